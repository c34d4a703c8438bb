package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// RatePrompter asks for the three scenario rates on a terminal
type RatePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewRatePrompter creates a prompter reading answers from in
func NewRatePrompter(in io.Reader, out io.Writer) *RatePrompter {
	return &RatePrompter{reader: bufio.NewReader(in), out: out}
}

// PromptRates asks for bear, base and bull rates, offering defaults.
// Each answer is re-asked until it is a valid percentage. Cancelling ctx
// abandons the pending answer and returns ctx.Err().
func (p *RatePrompter) PromptRates(ctx context.Context, defaults ScenarioRates) (ScenarioRates, error) {
	fmt.Fprintln(p.out, "Annual growth rates in percent (press Enter to keep the default):")

	bear, err := p.promptPercent(ctx, "bear", "  Bear case", defaults.Bear)
	if err != nil {
		return ScenarioRates{}, err
	}
	base, err := p.promptPercent(ctx, "base", "  Base case", defaults.Base)
	if err != nil {
		return ScenarioRates{}, err
	}
	bull, err := p.promptPercent(ctx, "bull", "  Bull case", defaults.Bull)
	if err != nil {
		return ScenarioRates{}, err
	}

	rates := ScenarioRates{Bear: bear, Base: base, Bull: bull}
	if !rates.Ordered() {
		fmt.Fprintln(p.out, "  ! Rates are not ordered bear <= base <= bull; the band will still be drawn between bear and bull.")
	}
	return rates, nil
}

// promptPercent asks for a percentage with validation (accepts "29", "29%" or "29.5")
func (p *RatePrompter) promptPercent(ctx context.Context, field, prompt string, defaultVal float64) (float64, error) {
	for {
		fmt.Fprintf(p.out, "%s [%s%%]: ", prompt, FormatRateInput(defaultVal))
		input, err := p.readLine(ctx)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		input = strings.TrimSpace(input)
		if err != nil && input == "" {
			if err == io.EOF {
				return defaultVal, nil
			}
			return 0, err
		}
		if input == "" {
			return defaultVal, nil
		}
		val, perr := parsePercentInput(field, input)
		if perr != nil {
			fmt.Fprintf(p.out, "  ✗ %s\n", perr.Error())
			if err == io.EOF {
				return 0, perr
			}
			continue
		}
		return val, nil
	}
}

// readLine reads one line from the terminal, giving up when ctx is done.
// The abandoned read keeps its goroutine until input arrives, so the prompter
// must not be used again after a cancellation.
func (p *RatePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		done <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.line, r.err
	}
}
