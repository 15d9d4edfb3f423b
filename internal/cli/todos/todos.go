package todos

import (
	"fmt"
	"slices"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
)

type TodoCmd struct {
	Add    TodoAddCmd    `cmd:"" help:"Add a todo."`
	Toggle TodoToggleCmd `cmd:"" help:"Toggle a todo's completion."`
	Remove TodoRemoveCmd `cmd:"" help:"Remove a todo."`
	List   TodoListCmd   `cmd:"" help:"List todos."`
}

type TodoAddCmd struct {
	Text string `arg:"" help:"Todo text."`
	Type string `short:"t" help:"Todo type: daily, weekly or monthly." default:"daily" enum:"daily,weekly,monthly"`
}

func (c *TodoAddCmd) Run(ctx *cli.Context) error {
	typ, err := models.ParseTodoType(c.Type)
	if err != nil {
		return err
	}
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := st.AddTodo(c.Text, typ)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added %s todo %q [%s]\n", typ, models.NormalizeName(c.Text), cli.ShortID(id))
	return nil
}

type TodoToggleCmd struct {
	Todo string `arg:"" help:"Todo text or id."`
}

func (c *TodoToggleCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	t, err := cli.FindTodo(st.Snapshot().Todos, c.Todo)
	if err != nil {
		return err
	}
	done, err := st.ToggleTodo(t.ID)
	if err != nil {
		return err
	}
	if done {
		fmt.Printf("✓ Completed %q\n", t.Text)
	} else {
		fmt.Printf("Reopened %q\n", t.Text)
	}
	return nil
}

type TodoRemoveCmd struct {
	Todo string `arg:"" help:"Todo text or id."`
}

func (c *TodoRemoveCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	t, err := cli.FindTodo(st.Snapshot().Todos, c.Todo)
	if err != nil {
		return err
	}
	if err := st.RemoveTodo(t.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Removed %q\n", t.Text)
	return nil
}

type TodoListCmd struct {
	Type string `short:"t" help:"Only show one type: daily, weekly or monthly." default:""`
	Open bool   `help:"Hide completed todos."`
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	var typ models.TodoType
	if c.Type != "" {
		var err error
		if typ, err = models.ParseTodoType(c.Type); err != nil {
			return err
		}
	}
	st, err := ctx.Open()
	if err != nil {
		return err
	}

	todos := Filter(st.Snapshot().Todos, typ, c.Open)
	if len(todos) == 0 {
		fmt.Println("No todos found.")
		return nil
	}

	for _, typ := range models.TodoTypes {
		group := slices.DeleteFunc(slices.Clone(todos), func(t models.Todo) bool { return t.Type != typ })
		if len(group) == 0 {
			continue
		}
		fmt.Println(cli.TitleStyle.Render(string(typ)))
		for _, t := range group {
			fmt.Printf("  %s %s %s\n", cli.Checkbox(t.Completed), t.Text, cli.MutedStyle.Render(cli.ShortID(t.ID)))
		}
	}
	return nil
}

// Filter keeps todos of typ (all types when empty), dropping completed ones
// when openOnly is set. Creation order is preserved.
func Filter(todos []models.Todo, typ models.TodoType, openOnly bool) []models.Todo {
	var out []models.Todo
	for _, t := range todos {
		if typ != "" && t.Type != typ {
			continue
		}
		if openOnly && t.Completed {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b models.Todo) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}
