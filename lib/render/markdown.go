// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
)

// The goldmark instance is immutable after construction; each Parse
// call allocates its own state.
var parser = sync.OnceValue(func() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
})

const wrapBreakpoints = " ,.;-+|"

// markdownRenderer walks the goldmark AST directly. Inline content of
// a block accumulates in inline and is wrapped as a unit when the
// block closes.
type markdownRenderer struct {
	source  []byte
	width   int
	color   bool
	palette palette

	output strings.Builder
	inline strings.Builder

	prefixes      []string
	linePrefix    string
	prefixWidth   int
	pendingBullet string

	bold          int
	italic        int
	strikethrough int

	lists            []listState
	trailingNewlines int
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

func (r *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			r.inline.Reset()
		} else if flushed := r.flushInline(); flushed != "" {
			r.write(flushed)
			r.ensureNewline()
			if !r.inTightList() {
				r.ensureBlankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			r.inline.Reset()
		} else {
			r.leaveHeading()
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			r.writeCode(r.lines(block), string(block.Language(r.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			r.writeCode(r.lines(node), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			r.pushPrefix("│ ")
		} else {
			r.popPrefix()
			r.ensureBlankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			r.lists = append(r.lists, listState{ordered: list.IsOrdered(), counter: list.Start, tight: list.IsTight})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			if !r.inTightList() {
				r.ensureBlankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			r.enterListItem()
		} else {
			r.popPrefix()
			if r.inTightList() {
				r.ensureNewline()
			} else {
				r.ensureBlankLine()
			}
		}

	case ast.KindThematicBreak:
		if entering {
			r.ensureBlankLine()
			r.write(r.linePrefix + r.palette.faint.Render(strings.Repeat("─", r.currentWidth())))
			r.ensureNewline()
			r.ensureBlankLine()
		}

	case ast.KindHTMLBlock:
		if entering {
			if html := strings.TrimSpace(r.lines(node)); html != "" {
				r.write(r.applyPrefixes(r.palette.faint.Render(html)))
				r.ensureNewline()
				r.ensureBlankLine()
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			r.inline.WriteString(r.styled(string(textNode.Segment.Value(r.source))))
			if textNode.HardLineBreak() {
				r.inline.WriteString("\n")
			} else if textNode.SoftLineBreak() {
				r.inline.WriteString(" ")
			}
		}

	case ast.KindString:
		if entering {
			r.inline.WriteString(r.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		counter := &r.italic
		if node.(*ast.Emphasis).Level >= 2 {
			counter = &r.bold
		}
		if entering {
			*counter++
		} else {
			*counter--
		}

	case extast.KindStrikethrough:
		if entering {
			r.strikethrough++
		} else {
			r.strikethrough--
		}

	case ast.KindCodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				switch typed := child.(type) {
				case *ast.Text:
					code.Write(typed.Segment.Value(r.source))
				case *ast.String:
					code.Write(typed.Value)
				}
			}
			r.inline.WriteString(r.palette.code.Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			label := r.inlineContent(node)
			r.inline.WriteString(label)
			if destination := string(link.Destination); destination != "" && ansi.Strip(label) != destination {
				r.inline.WriteString(" " + r.palette.faint.Render("<"+destination+">"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			r.inline.WriteString(r.palette.faint.Render(string(node.(*ast.AutoLink).URL(r.source))))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindImage:
		if entering {
			image := node.(*ast.Image)
			label := ansi.Strip(r.inlineContent(node))
			if label == "" {
				label = "image"
			}
			r.inline.WriteString(r.palette.faint.Render(fmt.Sprintf("[%s] <%s>", label, image.Destination)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			raw := node.(*ast.RawHTML)
			for index := 0; index < raw.Segments.Len(); index++ {
				segment := raw.Segments.At(index)
				r.inline.WriteString(r.palette.faint.Render(string(segment.Value(r.source))))
			}
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				r.inline.WriteString("[x] ")
			} else {
				r.inline.WriteString("[ ] ")
			}
		}
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) styled(content string) string {
	if r.bold == 0 && r.italic == 0 && r.strikethrough == 0 {
		return content
	}
	style := r.palette.renderer.NewStyle()
	if r.bold > 0 {
		style = style.Bold(true)
	}
	if r.italic > 0 {
		style = style.Italic(true)
	}
	if r.strikethrough > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// inlineContent renders node's children into a string without
// disturbing the enclosing inline buffer or style counters.
func (r *markdownRenderer) inlineContent(node ast.Node) string {
	saved := r.inline.String()
	bold, italic, strikethrough := r.bold, r.italic, r.strikethrough

	r.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		_ = ast.Walk(child, r.walk)
	}
	result := r.inline.String()

	r.inline.Reset()
	r.inline.WriteString(saved)
	r.bold, r.italic, r.strikethrough = bold, italic, strikethrough
	return result
}

func (r *markdownRenderer) lines(node ast.Node) string {
	var builder strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		builder.Write(segment.Value(r.source))
	}
	return builder.String()
}

func (r *markdownRenderer) writeCode(code, language string) {
	rendered := code
	if r.color {
		rendered = r.highlight(code, language)
	}
	r.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		r.write(r.consumeLinePrefix() + "  " + line)
		r.ensureNewline()
	}
	r.ensureBlankLine()
}

// highlight falls back to the plain code style when chroma does not
// know the language.
func (r *markdownRenderer) highlight(code, language string) string {
	if language != "" {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err == nil {
			return buffer.String()
		}
	}
	return r.palette.code.Render(strings.TrimRight(code, "\n"))
}

func (r *markdownRenderer) leaveHeading() {
	content := ansi.Strip(r.inline.String())
	r.inline.Reset()
	if content == "" {
		return
	}
	wrapped := ansi.Wrap(r.palette.heading.Render(content), r.currentWidth(), wrapBreakpoints)
	r.ensureBlankLine()
	r.write(r.applyPrefixes(wrapped))
	r.ensureNewline()
	r.ensureBlankLine()
}

func (r *markdownRenderer) enterListItem() {
	if len(r.lists) == 0 {
		return
	}
	top := &r.lists[len(r.lists)-1]
	bullet := "• "
	width := 2
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		width = len(bullet)
		top.counter++
	}
	r.pendingBullet = r.linePrefix + bullet
	r.pushPrefix(strings.Repeat(" ", width))
}

func (r *markdownRenderer) inTightList() bool {
	return len(r.lists) > 0 && r.lists[len(r.lists)-1].tight
}

func (r *markdownRenderer) currentWidth() int {
	return max(r.width-r.prefixWidth, 10)
}

func (r *markdownRenderer) pushPrefix(prefix string) {
	r.prefixes = append(r.prefixes, prefix)
	r.linePrefix += prefix
	r.prefixWidth += ansi.StringWidth(prefix)
}

func (r *markdownRenderer) popPrefix() {
	if len(r.prefixes) == 0 {
		return
	}
	top := r.prefixes[len(r.prefixes)-1]
	r.prefixes = r.prefixes[:len(r.prefixes)-1]
	r.linePrefix = r.linePrefix[:len(r.linePrefix)-len(top)]
	r.prefixWidth -= ansi.StringWidth(top)
}

func (r *markdownRenderer) consumeLinePrefix() string {
	if r.pendingBullet != "" {
		bullet := r.pendingBullet
		r.pendingBullet = ""
		return bullet
	}
	return r.linePrefix
}

func (r *markdownRenderer) applyPrefixes(content string) string {
	lines := strings.Split(content, "\n")
	for index, line := range lines {
		if index == 0 {
			lines[index] = r.consumeLinePrefix() + line
		} else {
			lines[index] = r.linePrefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func (r *markdownRenderer) flushInline() string {
	content := r.inline.String()
	r.inline.Reset()
	if strings.TrimSpace(ansi.Strip(content)) == "" {
		return ""
	}
	return r.applyPrefixes(ansi.Wrap(content, r.currentWidth(), wrapBreakpoints))
}

func (r *markdownRenderer) write(s string) {
	if s == "" {
		return
	}
	r.output.WriteString(s)
	trimmed := strings.TrimRight(s, "\n")
	added := len(s) - len(trimmed)
	if trimmed == "" {
		r.trailingNewlines += added
	} else {
		r.trailingNewlines = added
	}
}

func (r *markdownRenderer) ensureNewline() {
	if r.trailingNewlines < 1 {
		r.write("\n")
	}
}

func (r *markdownRenderer) ensureBlankLine() {
	// Nothing written yet: no leading blank line.
	if r.output.Len() == 0 {
		return
	}
	for r.trailingNewlines < 2 {
		r.write("\n")
	}
}
