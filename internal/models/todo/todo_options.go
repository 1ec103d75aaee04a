package todo

// TodoOption - функция частичного обновления: применяются только те поля,
// для которых обработчик собрал опцию
type TodoOption func(*Todo)

func WithTitle(title string) TodoOption {
	return func(t *Todo) {
		t.Title = title
	}
}

func WithCompleted(completed bool) TodoOption {
	return func(t *Todo) {
		t.Completed = completed
	}
}
