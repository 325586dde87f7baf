package ui

import (
	"fmt"
	"io"
)

// StepPrinter writes "(i/N) <name>" progress lines for each pipeline
// step. It implements pipeline.Reporter.
type StepPrinter struct {
	Out    io.Writer
	Styles *Styles
}

// NewStepPrinter creates a StepPrinter writing styled lines to out.
func NewStepPrinter(out io.Writer, styles *Styles) *StepPrinter {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &StepPrinter{Out: out, Styles: styles}
}

func (p *StepPrinter) counter(index, total int) string {
	return p.Styles.Dim.Render(fmt.Sprintf("(%d/%d)", index, total))
}

// StepStarted announces a step about to execute.
func (p *StepPrinter) StepStarted(index, total int, name string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.counter(index, total), p.Styles.Primary.Render(name))
}

// StepSkipped announces a step whose condition ruled execution out.
func (p *StepPrinter) StepSkipped(index, total int, name string) {
	fmt.Fprintf(p.Out, "%s %s %s\n",
		p.counter(index, total),
		p.Styles.Dim.Render(name),
		p.Styles.Dim.Render("(up to date)"))
}

// StepFinished reports a step's outcome.
func (p *StepPrinter) StepFinished(index, total int, name string, err error) {
	if err != nil {
		fmt.Fprintf(p.Out, "%s %s %s\n",
			p.counter(index, total),
			p.Styles.Error.Render("✗"),
			p.Styles.Error.Render(name))
		return
	}
	fmt.Fprintf(p.Out, "%s %s %s\n",
		p.counter(index, total),
		p.Styles.Success.Render("✓"),
		p.Styles.Primary.Render(name))
}
