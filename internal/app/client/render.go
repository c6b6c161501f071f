package client

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"coursekeeper/internal/domain/course"
	"coursekeeper/internal/presenter"
)

var (
	insertColor = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
	updateColor = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
	headColor   = color.New(color.Bold)
)

// TerminalRenderer prints row operations and, optionally, the whole list
// after each change.
type TerminalRenderer struct {
	mu        sync.Mutex
	w         io.Writer
	showTable bool
}

var _ presenter.Renderer = (*TerminalRenderer)(nil)

func NewTerminalRenderer(w io.Writer, showTable bool) *TerminalRenderer {
	return &TerminalRenderer{w: w, showTable: showTable}
}

func (r *TerminalRenderer) Render(ops []presenter.Op, rows []course.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(rows) == 0 && len(ops) == 0 {
		fmt.Fprintln(r.w, "Курсы не найдены")
		return
	}

	for _, op := range ops {
		switch op.Kind {
		case presenter.Insert:
			insertColor.Fprintf(r.w, "+ [%d] %s\n", op.Position, describe(op.Course))
		case presenter.Remove:
			removeColor.Fprintf(r.w, "- [%d] %s\n", op.Position, describe(op.Course))
		case presenter.Update:
			updateColor.Fprintf(r.w, "~ [%d] %s\n", op.Position, describe(op.Course))
		}
	}

	if r.showTable {
		fmt.Fprintln(r.w)
		_ = PrintTable(r.w, rows)
		fmt.Fprintln(r.w)
	}
}

func (r *TerminalRenderer) RenderError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	errorColor.Fprintf(r.w, "! %v\n", err)
}

func describe(c course.Course) string {
	return fmt.Sprintf("%s %s (%d ч., %s)", c.Code, c.Name, c.CreditHours, c.Type)
}

// PrintTable prints courses as an aligned table, newest first.
func PrintTable(w io.Writer, courses []course.Course) error {
	if len(courses) == 0 {
		_, err := fmt.Fprintln(w, "Курсы не найдены")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headColor.Fprintf(tw, "ID\tКод\tНазвание\tЧасы\tТип\tСоздано\t\n")
	fmt.Fprintf(tw, "---\t---\t---\t---\t---\t---\t\n")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t\n",
			c.ID, c.Code, c.Name, c.CreditHours, c.Type, formatTime(c.Timestamp))
	}
	return tw.Flush()
}

// PrintCourse prints one course as key/value lines.
func PrintCourse(w io.Writer, c course.Course) {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", c.ID)
	fmt.Fprintf(&b, "Название: %s\n", c.Name)
	fmt.Fprintf(&b, "Код:      %s\n", c.Code)
	fmt.Fprintf(&b, "Часы:     %d\n", c.CreditHours)
	fmt.Fprintf(&b, "Тип:      %s\n", c.Type.DisplayName())
	fmt.Fprintf(&b, "Создано:  %s\n", formatTime(c.Timestamp))
	io.WriteString(w, b.String())
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}
