package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"HeroCatalog/internal/busy"
	"HeroCatalog/internal/hero"
	"HeroCatalog/internal/view"
)

const browseHelp = `commands:
  list                   show the (filtered) collection
  search <text>          filter; blank clears
  select <id>            select a record
  show                   show the selected record
  edit [id]              edit a record (default: the selection)
  new                    open an empty form
  set <field> <value>    name, alias, nationality, team, description, image
  power+ <power>         add a power to the form
  power- <power>         remove a power from the form
  form                   show the form
  submit                 save the form
  cancel                 discard the form
  delete [id]            delete a record (default: the selection)
  quit`

var errQuit = errors.New("quit")

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit the catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) browse(ctx context.Context, in io.Reader, out io.Writer) error {
	tracker := busy.NewTracker()
	store, err := a.openStore(ctx, tracker, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	c := &console{out: out, in: bufio.NewScanner(in)}
	orch := view.New(store, view.Options{
		Busy:        tracker,
		Log:         a.log,
		Debounce:    a.cfg.View.Debounce,
		CreateDelay: a.cfg.View.CreateDelay,
		OnChange:    c.changed,
	})
	c.orch = orch

	c.printf("loading...\n")
	if err := orch.Start(ctx); err != nil {
		return err
	}
	defer orch.Close()

	return c.loop(ctx)
}

// console is a line-oriented presentation over the orchestrator. Output
// arrives both from the command loop and from store and search callbacks.
type console struct {
	orch *view.Orchestrator
	in   *bufio.Scanner

	mu       sync.Mutex
	out      io.Writer
	draft    hero.Draft
	lastSeen string
}

func (c *console) loop(ctx context.Context) error {
	for {
		c.printf("> ")
		if !c.in.Scan() {
			return c.in.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := c.exec(ctx, c.in.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			c.printf("error: %v\n", err)
		}
	}
}

func (c *console) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "help", "?":
		c.printf("%s\n", browseHelp)
	case "quit", "exit", "q":
		return errQuit
	case "list", "ls":
		c.printList(c.orch.Snapshot())
	case "search":
		c.orch.SetSearch(arg)
	case "select":
		h, err := c.lookup(arg)
		if err != nil {
			return err
		}
		if err := c.orch.Select(ctx, h); err != nil {
			return err
		}
		c.printf("selected %s\n", h.Name)
	case "show":
		st := c.orch.Snapshot()
		if st.Selected == nil {
			c.printf("nothing selected\n")
			return nil
		}
		c.printHero(*st.Selected)
	case "edit":
		h, err := c.lookup(arg)
		if err != nil {
			return err
		}
		c.setDraft(h.Draft())
		c.orch.Edit(h)
		c.printf("editing %s\n", h.Name)
	case "new":
		if err := c.orch.CreateNew(ctx); err != nil {
			return err
		}
		c.setDraft(hero.Draft{})
		c.printf("new record\n")
	case "set":
		return c.withForm(func(d *hero.Draft) error {
			field, value, _ := strings.Cut(arg, " ")
			return setField(d, field, strings.TrimSpace(value))
		})
	case "power+":
		return c.withForm(func(d *hero.Draft) error {
			powers, ok := hero.AddPower(d.Powers, arg)
			if !ok {
				return fmt.Errorf("power %q is blank or already listed", arg)
			}
			d.Powers = powers
			return nil
		})
	case "power-":
		return c.withForm(func(d *hero.Draft) error {
			d.Powers = hero.RemovePower(d.Powers, arg)
			return nil
		})
	case "form":
		return c.withForm(func(d *hero.Draft) error {
			c.printDraft(*d)
			return nil
		})
	case "submit":
		if !c.orch.Snapshot().FormOpen {
			return errors.New("no form open")
		}
		if err := c.orch.Submit(ctx, c.getDraft()); err != nil {
			return err
		}
		c.printf("saved\n")
	case "cancel":
		c.orch.CloseForm()
		c.printf("discarded\n")
	case "delete", "rm":
		h, err := c.lookup(arg)
		if err != nil {
			return err
		}
		if !c.confirm(fmt.Sprintf("delete %s? [y/N] ", h.Name)) {
			c.printf("kept\n")
			return nil
		}
		if err := c.orch.Delete(ctx, h.ID); err != nil {
			return err
		}
		c.printf("deleted %s\n", h.Name)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

// lookup resolves id, or the selection when id is empty.
func (c *console) lookup(id string) (hero.Hero, error) {
	st := c.orch.Snapshot()
	if id == "" {
		if st.Selected == nil {
			return hero.Hero{}, errors.New("nothing selected")
		}
		id = st.Selected.ID
	}
	h, ok := st.Find(id)
	if !ok {
		return hero.Hero{}, fmt.Errorf("no record with id %q", id)
	}
	return h, nil
}

func (c *console) confirm(prompt string) bool {
	c.printf("%s", prompt)
	if !c.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return answer == "y" || answer == "yes"
}

func (c *console) withForm(fn func(*hero.Draft) error) error {
	if !c.orch.Snapshot().FormOpen {
		return errors.New("no form open (use edit or new)")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&c.draft)
}

func (c *console) setDraft(d hero.Draft) {
	c.mu.Lock()
	c.draft = d
	c.mu.Unlock()
}

func (c *console) getDraft() hero.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft
	d.Powers = append([]string(nil), c.draft.Powers...)
	return d
}

// changed prints the filtered list whenever its content or the term it
// reflects moves on.
func (c *console) changed(st view.State) {
	key := listKey(st)

	c.mu.Lock()
	if key == c.lastSeen {
		c.mu.Unlock()
		return
	}
	c.lastSeen = key
	c.mu.Unlock()

	c.printList(st)
}

func listKey(st view.State) string {
	ids := make([]string, 0, len(st.Filtered))
	for _, h := range st.Filtered {
		ids = append(ids, h.ID)
	}
	return st.Query + "\x00" + strings.Join(ids, ",")
}

func (c *console) printList(st view.State) {
	var b strings.Builder
	fmt.Fprintf(&b, "showing %d of %d", st.FilteredCount(), st.Count())
	if s := strings.TrimSpace(st.Query); s != "" {
		fmt.Fprintf(&b, " for %q", s)
	}
	if term, ok := c.orch.PendingSearch(); ok && term != st.Query {
		fmt.Fprintf(&b, " (searching %q)", term)
	}
	if st.Busy {
		b.WriteString(" (working)")
	}
	b.WriteByte('\n')

	for _, h := range st.Filtered {
		mark := " "
		if st.Selected != nil && st.Selected.ID == h.ID {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %-28s %s\n", mark, h.ID, h.Name)
	}
	c.printf("%s", b.String())
}

func (c *console) printHero(h hero.Hero) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", h.Name, h.ID)
	if h.Alias != "" {
		fmt.Fprintf(&b, "  alias:       %s\n", h.Alias)
	}
	if h.Team != "" {
		fmt.Fprintf(&b, "  team:        %s\n", h.Team)
	}
	fmt.Fprintf(&b, "  nationality: %s\n", h.Nationality)
	fmt.Fprintf(&b, "  powers:      %s\n", strings.Join(h.Powers, ", "))
	fmt.Fprintf(&b, "  image:       %s\n", h.Image)
	fmt.Fprintf(&b, "  %s\n", h.Description)
	c.printf("%s", b.String())
}

func (c *console) printDraft(d hero.Draft) {
	fmt.Fprintf(c.out,
		"name=%q alias=%q nationality=%q team=%q image=%q powers=%q\ndescription=%q\n",
		d.Name, d.Alias, d.Nationality, d.Team, d.Image, d.Powers, d.Description,
	)
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func setField(d *hero.Draft, field, value string) error {
	switch field {
	case "name":
		d.Name = value
	case "alias":
		d.Alias = value
	case "nationality":
		d.Nationality = value
	case "team":
		d.Team = value
	case "description":
		d.Description = value
	case "image":
		d.Image = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
