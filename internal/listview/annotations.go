package listview

import (
	"time"

	"github.com/google/uuid"
)

// Сессионные аннотации: живут ровно столько, сколько живёт контроллер,
// не сериализуются и не отправляются на сервер. Их наличие или отсутствие
// никогда не влияет на авторизацию и на сохранённые поля задачи

type Subtask struct {
	Title string
	Done  bool
}

type Annotation struct {
	Category    string
	Pinned      bool
	Favorite    bool
	Priority    int
	DueDate     time.Time
	Description string
	Subtasks    []Subtask
}

// AnnotationStore создаётся на сессию и передаётся контроллеру явно,
// а не через глобальное состояние
type AnnotationStore struct {
	categories []string
	byTask     map[uuid.UUID]*Annotation
}

var defaultCategories = []string{"Все", "Работа", "Личное", "Покупки", "Учёба"}

func NewAnnotationStore(categories ...string) *AnnotationStore {
	if len(categories) == 0 {
		categories = append([]string{}, defaultCategories...)
	}
	return &AnnotationStore{
		categories: categories,
		byTask:     make(map[uuid.UUID]*Annotation),
	}
}

// Reset пересоздаёт аннотации под свежезагруженный список. Значения
// выводятся детерминированно из позиции задачи, не из пользовательского ввода
func (s *AnnotationStore) Reset(tasks []Task) {
	s.byTask = make(map[uuid.UUID]*Annotation, len(tasks))

	for i, t := range tasks {
		s.byTask[t.ID] = &Annotation{
			Category: s.categories[i%len(s.categories)],
			Priority: i % 3,
			DueDate:  t.CreatedAt.AddDate(0, 0, i+1),
		}
	}
}

func (s *AnnotationStore) Get(id uuid.UUID) (Annotation, bool) {
	a, ok := s.byTask[id]
	if !ok {
		return Annotation{}, false
	}
	return *a, true
}

func (s *AnnotationStore) Categories() []string {
	return append([]string{}, s.categories...)
}

func (s *AnnotationStore) AddCategory(name string) {
	if name == "" {
		return
	}
	for _, c := range s.categories {
		if c == name {
			return
		}
	}
	s.categories = append(s.categories, name)
}

func (s *AnnotationStore) SetCategory(id uuid.UUID, category string) {
	if a, ok := s.byTask[id]; ok {
		a.Category = category
	}
}

func (s *AnnotationStore) TogglePin(id uuid.UUID) {
	if a, ok := s.byTask[id]; ok {
		a.Pinned = !a.Pinned
	}
}

func (s *AnnotationStore) ToggleFavorite(id uuid.UUID) {
	if a, ok := s.byTask[id]; ok {
		a.Favorite = !a.Favorite
	}
}

func (s *AnnotationStore) SetPriority(id uuid.UUID, priority int) {
	if a, ok := s.byTask[id]; ok {
		a.Priority = priority
	}
}

func (s *AnnotationStore) SetDueDate(id uuid.UUID, due time.Time) {
	if a, ok := s.byTask[id]; ok {
		a.DueDate = due
	}
}

func (s *AnnotationStore) SetDescription(id uuid.UUID, description string) {
	if a, ok := s.byTask[id]; ok {
		a.Description = description
	}
}

func (s *AnnotationStore) AddSubtask(id uuid.UUID, title string) {
	if a, ok := s.byTask[id]; ok {
		a.Subtasks = append(a.Subtasks, Subtask{Title: title})
	}
}

func (s *AnnotationStore) ToggleSubtask(id uuid.UUID, index int) {
	a, ok := s.byTask[id]
	if !ok || index < 0 || index >= len(a.Subtasks) {
		return
	}
	a.Subtasks[index].Done = !a.Subtasks[index].Done
}
