package listview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateLoading
)

// ErrBusy возвращается, когда мутация приходит во время незавершённого
// запроса. Защита грубая: блокируются и несвязанные мутации
var ErrBusy = errors.New("запрос уже выполняется")

var ErrUnknownTask = errors.New("задачи нет в кэше")

// Controller держит одноразовый кэш списка задач и после каждой мутации
// безусловно перечитывает список целиком: сервер - единственный источник
// истины, никакого инкрементального слияния
type Controller struct {
	api         TaskAPI
	annotations *AnnotationStore

	mtx      sync.Mutex
	cache    []Task
	state    State
	search   string
	category string
}

func NewController(api TaskAPI, annotations *AnnotationStore) *Controller {
	if annotations == nil {
		annotations = NewAnnotationStore()
	}
	return &Controller{
		api:         api,
		annotations: annotations,
	}
}

func (c *Controller) State() State {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state
}

func (c *Controller) Annotations() *AnnotationStore {
	return c.annotations
}

// Load - первичная загрузка: полный fetch, канонический порядок,
// пересев аннотаций
func (c *Controller) Load(ctx context.Context) error {
	c.mtx.Lock()
	if c.state == StateLoading {
		c.mtx.Unlock()
		return ErrBusy
	}
	c.state = StateLoading
	c.mtx.Unlock()

	tasks, err := c.api.List(ctx)

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.state = StateIdle

	if err != nil {
		// прежний кэш остаётся как есть
		return fmt.Errorf("загрузка списка: %w", err)
	}

	canonicalSort(tasks)
	c.cache = tasks
	c.annotations.Reset(tasks)

	return nil
}

func (c *Controller) Create(ctx context.Context, title string) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		_, err := c.api.Create(ctx, title)
		return err
	})
}

// Toggle инвертирует флаг завершённости задачи из текущего кэша
func (c *Controller) Toggle(ctx context.Context, id uuid.UUID) error {
	c.mtx.Lock()
	var completed bool
	found := false
	for _, t := range c.cache {
		if t.ID == id {
			completed = !t.Completed
			found = true
			break
		}
	}
	c.mtx.Unlock()

	if !found {
		return ErrUnknownTask
	}

	return c.mutate(ctx, func(ctx context.Context) error {
		_, err := c.api.Update(ctx, id, Patch{Completed: &completed})
		return err
	})
}

func (c *Controller) Rename(ctx context.Context, id uuid.UUID, title string) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		_, err := c.api.Update(ctx, id, Patch{Title: &title})
		return err
	})
}

func (c *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.api.Delete(ctx, id)
	})
}

// mutate - общий протокол мутаций: guard, запрос, безусловный refetch.
// Неудачная мутация не трогает кэш; неудачный refetch после удачной
// мутации оставляет устаревший, но целостный кэш
func (c *Controller) mutate(ctx context.Context, op func(context.Context) error) error {
	c.mtx.Lock()
	if c.state == StateLoading {
		c.mtx.Unlock()
		return ErrBusy
	}
	c.state = StateLoading
	c.mtx.Unlock()

	if err := op(ctx); err != nil {
		c.mtx.Lock()
		c.state = StateIdle
		c.mtx.Unlock()
		return err
	}

	tasks, err := c.api.List(ctx)

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.state = StateIdle

	if err != nil {
		return fmt.Errorf("обновление списка после мутации: %w", err)
	}

	canonicalSort(tasks)
	c.cache = tasks
	c.annotations.Reset(tasks)

	return nil
}

// Move - локальная перестановка drag-and-drop. На сервер не уходит
// и будет затёрта каноническим порядком при следующем refetch
func (c *Controller) Move(sourceIndex, destinationIndex int) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if sourceIndex < 0 || sourceIndex >= len(c.cache) ||
		destinationIndex < 0 || destinationIndex >= len(c.cache) {
		return fmt.Errorf("индекс вне списка: %d -> %d", sourceIndex, destinationIndex)
	}

	moved := c.cache[sourceIndex]
	c.cache = append(c.cache[:sourceIndex], c.cache[sourceIndex+1:]...)

	rest := append([]Task{}, c.cache[destinationIndex:]...)
	c.cache = append(c.cache[:destinationIndex], moved)
	c.cache = append(c.cache, rest...)

	return nil
}

// Tasks отдаёт копию кэша в текущем отображаемом порядке
func (c *Controller) Tasks() []Task {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]Task{}, c.cache...)
}

func (c *Controller) SetSearch(query string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.search = query
}

func (c *Controller) SetCategory(category string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.category = category
}

// Visible применяет поиск по подстроке и фильтр категории к копии списка;
// сам кэш фильтры не меняют и refetch не вызывают
func (c *Controller) Visible() []Task {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	res := []Task{}
	for _, t := range c.cache {
		if c.search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(c.search)) {
			continue
		}
		if c.category != "" && c.category != "Все" {
			a, ok := c.annotations.Get(t.ID)
			if !ok || a.Category != c.category {
				continue
			}
		}
		res = append(res, t)
	}

	return res
}

func (c *Controller) ActiveCount() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	count := 0
	for _, t := range c.cache {
		if !t.Completed {
			count++
		}
	}
	return count
}

// canonicalSort - канонический порядок отображения: незавершённые раньше
// завершённых, внутри группы сохраняется серверный порядок (created_at desc)
func canonicalSort(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return !tasks[i].Completed && tasks[j].Completed
	})
}
