// Copyright (c) 2026 BVK Chaitanya

package transfer

import (
	"fmt"
	"io"
	"strings"
)

const progressWidth = 50

type progressBar struct {
	w io.Writer

	total   int64
	written int64

	suffix string
	factor float64
}

func newProgressBar(w io.Writer, total int64) *progressBar {
	p := &progressBar{w: w, total: total, suffix: "KB", factor: 1 << 10}
	if total >= 1<<20 {
		p.suffix, p.factor = "MB", 1<<20
	}
	return p
}

func (p *progressBar) Write(bs []byte) (int, error) {
	p.written += int64(len(bs))
	p.draw()
	return len(bs), nil
}

func (p *progressBar) draw() {
	end := int(progressWidth * p.written / p.total)
	if end > progressWidth {
		end = progressWidth
	}
	fmt.Fprintf(p.w, "\r[%s%s]%.2f %s/%.2f %s   ",
		strings.Repeat("=", end), strings.Repeat(" ", progressWidth-end),
		float64(p.written)/p.factor, p.suffix, float64(p.total)/p.factor, p.suffix)
}

func (p *progressBar) finish() {
	fmt.Fprintln(p.w)
}
