package timetable

import (
	"regexp"
	"strings"
)

// courseCodeRegex matches a teaching-class code such as "101B0001".
var courseCodeRegex = regexp.MustCompile(`\d{3}[A-Z]\d{4}`)

// Block is the raw text of one course, name line first.
type Block struct {
	Lines []string
}

// Text joins the block lines with newlines.
func (b Block) Text() string {
	return strings.Join(b.Lines, "\n")
}

// Segment splits raw timetable text into per-course blocks.
//
// A non-blank line starts a new block when the line after it carries a course
// code. Blank lines are dropped and text before the first block start is
// discarded.
func Segment(text string) []Block {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var (
		blocks  []Block
		current []string
		started bool
	)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}

		switch {
		case next != "" && courseCodeRegex.MatchString(next):
			if len(current) > 0 {
				blocks = append(blocks, Block{Lines: current})
			}
			current = []string{line}
			started = true
		case started:
			current = append(current, line)
		}
	}

	if len(current) > 0 {
		blocks = append(blocks, Block{Lines: current})
	}
	return blocks
}
