package listview_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"todoSaas/internal/listview"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI имитирует сервер: хранит задачи и отдаёт список в порядке
// created_at desc, как настоящий Task Store
type fakeAPI struct {
	mtx          sync.Mutex
	tasks        []listview.Task
	clock        time.Time
	failList     bool
	failMutation bool
	block        chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{clock: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeAPI) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeAPI) List(ctx context.Context) ([]listview.Task, error) {
	if f.block != nil {
		<-f.block
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.failList {
		return nil, errors.New("network down")
	}

	res := append([]listview.Task{}, f.tasks...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (f *fakeAPI) Create(ctx context.Context, title string) (listview.Task, error) {
	if f.block != nil {
		<-f.block
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.failMutation {
		return listview.Task{}, errors.New("rejected")
	}

	now := f.tick()
	t := listview.Task{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeAPI) Update(ctx context.Context, id uuid.UUID, patch listview.Patch) (listview.Task, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.failMutation {
		return listview.Task{}, errors.New("rejected")
	}

	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if patch.Title != nil {
				f.tasks[i].Title = *patch.Title
			}
			if patch.Completed != nil {
				f.tasks[i].Completed = *patch.Completed
			}
			f.tasks[i].UpdatedAt = f.tick()
			return f.tasks[i], nil
		}
	}
	return listview.Task{}, errors.New("forbidden")
}

func (f *fakeAPI) Delete(ctx context.Context, id uuid.UUID) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.failMutation {
		return errors.New("rejected")
	}

	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return errors.New("forbidden")
}

func titles(tasks []listview.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.Title
	}
	return res
}

func findByTitle(t *testing.T, tasks []listview.Task, title string) listview.Task {
	t.Helper()
	for _, task := range tasks {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("задача %q не найдена", title)
	return listview.Task{}
}

// TestController_LoadCanonicalOrder: свежая загрузка даёт канонический порядок
func TestController_LoadCanonicalOrder(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	require.NoError(t, c.Create(ctx, "B"))
	require.NoError(t, c.Create(ctx, "C"))

	// новые первыми
	assert.Equal(t, []string{"C", "B", "A"}, titles(c.Tasks()))

	// завершённая уходит в конец, внутри групп порядок сервера сохраняется
	b := findByTitle(t, c.Tasks(), "B")
	require.NoError(t, c.Toggle(ctx, b.ID))
	assert.Equal(t, []string{"C", "A", "B"}, titles(c.Tasks()))
}

// TestController_Scenario воспроизводит сценарий T1/T2:
// завершение и отмена завершения меняют порядок групп предсказуемо
func TestController_Scenario(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "Buy milk"))     // T1
	require.NoError(t, c.Create(ctx, "Write report")) // T2

	assert.Equal(t, []string{"Write report", "Buy milk"}, titles(c.Tasks()))

	t1 := findByTitle(t, c.Tasks(), "Buy milk")
	require.NoError(t, c.Toggle(ctx, t1.ID))
	assert.Equal(t, []string{"Write report", "Buy milk"}, titles(c.Tasks()))

	t2 := findByTitle(t, c.Tasks(), "Write report")
	require.NoError(t, c.Toggle(ctx, t2.ID))

	require.NoError(t, c.Toggle(ctx, t1.ID)) // отмена завершения T1
	assert.Equal(t, []string{"Buy milk", "Write report"}, titles(c.Tasks()))
}

// TestController_MoveIsEphemeral: ручная перестановка не переживает refetch
func TestController_MoveIsEphemeral(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	require.NoError(t, c.Create(ctx, "B"))
	require.NoError(t, c.Create(ctx, "C"))

	require.NoError(t, c.Move(2, 0))
	assert.Equal(t, []string{"A", "C", "B"}, titles(c.Tasks()))

	// любая мутация возвращает канонический порядок
	require.NoError(t, c.Create(ctx, "D"))
	assert.Equal(t, []string{"D", "C", "B", "A"}, titles(c.Tasks()))

	t.Run("index out of range", func(t *testing.T) {
		assert.Error(t, c.Move(-1, 0))
		assert.Error(t, c.Move(0, 99))
	})
}

// TestController_FailedMutationKeepsCache: отклонённая мутация не трогает кэш
func TestController_FailedMutationKeepsCache(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	before := titles(c.Tasks())

	api.failMutation = true
	err := c.Create(ctx, "B")
	require.Error(t, err)

	assert.Equal(t, before, titles(c.Tasks()))
	assert.Equal(t, listview.StateIdle, c.State())
}

// TestController_FailedRefreshKeepsStaleCache: неудачный refetch после
// удачной мутации оставляет прежний кэш целым
func TestController_FailedRefreshKeepsStaleCache(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	before := titles(c.Tasks())

	api.failList = true
	err := c.Create(ctx, "B")
	require.Error(t, err)

	// мутация на сервере прошла, но кэш остался устаревшим и целостным
	assert.Equal(t, before, titles(c.Tasks()))
	assert.Equal(t, listview.StateIdle, c.State())

	api.failList = false
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, []string{"B", "A"}, titles(c.Tasks()))
}

// TestController_LoadFailureKeepsCache: неудачная загрузка не портит кэш
func TestController_LoadFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	before := titles(c.Tasks())

	api.failList = true
	require.Error(t, c.Load(ctx))
	assert.Equal(t, before, titles(c.Tasks()))
}

// TestController_BusyGuard: во время незавершённого запроса новые мутации
// отклоняются, в том числе несвязанные
func TestController_BusyGuard(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	api.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- c.Create(ctx, "slow")
	}()

	// ждём входа в Loading
	deadline := time.After(time.Second)
	for c.State() != listview.StateLoading {
		select {
		case <-deadline:
			t.Fatal("контроллер не перешёл в Loading")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	assert.ErrorIs(t, c.Create(ctx, "other"), listview.ErrBusy)
	assert.ErrorIs(t, c.Delete(ctx, uuid.New()), listview.ErrBusy)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, listview.StateIdle, c.State())
}

// TestController_Filters: поиск и категория фильтруют копию, не кэш
func TestController_Filters(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	store := listview.NewAnnotationStore()
	c := listview.NewController(api, store)

	require.NoError(t, c.Create(ctx, "Buy milk"))
	require.NoError(t, c.Create(ctx, "Write report"))
	require.NoError(t, c.Create(ctx, "Buy bread"))

	c.SetSearch("buy")
	assert.Equal(t, []string{"Buy bread", "Buy milk"}, titles(c.Visible()))

	c.SetSearch("")
	assert.Len(t, c.Visible(), 3)

	// аннотации сеются детерминированно по индексу: у задачи с индексом 1
	// категория "Работа"
	second := c.Tasks()[1]
	c.SetCategory("Работа")
	visible := c.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, second.ID, visible[0].ID)

	c.SetCategory("Все")
	assert.Len(t, c.Visible(), 3)

	// кэш фильтрами не менялся
	assert.Len(t, c.Tasks(), 3)
}

// TestController_DeleteRefreshes: удаление исчезает из списка после refetch
func TestController_DeleteRefreshes(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	require.NoError(t, c.Create(ctx, "B"))

	a := findByTitle(t, c.Tasks(), "A")
	require.NoError(t, c.Delete(ctx, a.ID))

	assert.Equal(t, []string{"B"}, titles(c.Tasks()))

	// повторное удаление сервер отклоняет, кэш не меняется
	require.Error(t, c.Delete(ctx, a.ID))
	assert.Equal(t, []string{"B"}, titles(c.Tasks()))
}

// TestController_RenameKeepsCompleted: частичное обновление не трогает флаг
func TestController_RenameKeepsCompleted(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "old title"))
	task := findByTitle(t, c.Tasks(), "old title")
	require.NoError(t, c.Toggle(ctx, task.ID))

	require.NoError(t, c.Rename(ctx, task.ID, "new title"))

	renamed := findByTitle(t, c.Tasks(), "new title")
	assert.True(t, renamed.Completed)
}

// TestController_ActiveCount считает незавершённые
func TestController_ActiveCount(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := listview.NewController(api, nil)

	require.NoError(t, c.Create(ctx, "A"))
	require.NoError(t, c.Create(ctx, "B"))
	assert.Equal(t, 2, c.ActiveCount())

	a := findByTitle(t, c.Tasks(), "A")
	require.NoError(t, c.Toggle(ctx, a.ID))
	assert.Equal(t, 1, c.ActiveCount())
}
