package services

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// blockSeparator joins rendered elements so they line up inside the
// post-content container of the page template.
const blockSeparator = "\n          "

var (
	reBoldItalic = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.+?)\*`)
	reCode       = regexp.MustCompile("`(.+?)`")
	reLink       = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)

	reHeading = regexp.MustCompile(`^(#{1,3})\s+(.+)`)
	reBullet  = regexp.MustCompile(`^[-*]\s+`)
	reOrdered = regexp.MustCompile(`^\d+\.\s+`)
)

func inlineFormat(s string) string {
	s = reBoldItalic.ReplaceAllString(s, "<strong><em>$1</em></strong>")
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reCode.ReplaceAllString(s, "<code>$1</code>")
	s = reLink.ReplaceAllString(s, `<a href="$2">$1</a>`)
	return s
}

// mdRenderer holds the block state while walking the lines of a document.
type mdRenderer struct {
	out          []string
	inList       bool
	inOrdered    bool
	inCode       bool
	inBlockquote bool
	quoteLines   []string
}

func (r *mdRenderer) emit(s string) {
	r.out = append(r.out, s)
}

func (r *mdRenderer) flushBlockquote() {
	if !r.inBlockquote {
		return
	}
	r.emit("<blockquote><p>" + inlineFormat(strings.Join(r.quoteLines, " ")) + "</p></blockquote>")
	r.inBlockquote = false
	r.quoteLines = nil
}

func (r *mdRenderer) line(line string) {
	stripped := strings.TrimSpace(line)

	if strings.HasPrefix(stripped, "```") {
		if r.inCode {
			r.emit("</code></pre>")
			r.inCode = false
		} else {
			r.flushBlockquote()
			r.emit("<pre><code>")
			r.inCode = true
		}
		return
	}
	if r.inCode {
		r.emit(html.EscapeString(line))
		return
	}

	if strings.HasPrefix(stripped, "> ") {
		if !r.inBlockquote {
			r.inBlockquote = true
			r.quoteLines = nil
		}
		r.quoteLines = append(r.quoteLines, stripped[2:])
		return
	}
	r.flushBlockquote()

	// h1 is reserved for the post title, so headings shift down one level.
	if m := reHeading.FindStringSubmatch(stripped); m != nil {
		tag := "h" + strconv.Itoa(min(len(m[1])+1, 4))
		r.emit("<" + tag + ">" + inlineFormat(m[2]) + "</" + tag + ">")
		return
	}

	if stripped == "---" || stripped == "***" || stripped == "___" {
		r.emit("<hr>")
		return
	}

	if loc := reBullet.FindStringIndex(stripped); loc != nil {
		if !r.inList {
			r.emit("<ul>")
			r.inList = true
		}
		r.emit("<li>" + inlineFormat(stripped[loc[1]:]) + "</li>")
		return
	} else if r.inList {
		r.emit("</ul>")
		r.inList = false
	}

	if loc := reOrdered.FindStringIndex(stripped); loc != nil {
		if !r.inOrdered {
			r.emit("<ol>")
			r.inOrdered = true
		}
		r.emit("<li>" + inlineFormat(stripped[loc[1]:]) + "</li>")
		return
	} else if r.inOrdered {
		r.emit("</ol>")
		r.inOrdered = false
	}

	if stripped == "" {
		return
	}

	r.emit("<p>" + inlineFormat(stripped) + "</p>")
}

func (r *mdRenderer) close() {
	r.flushBlockquote()
	if r.inList {
		r.emit("</ul>")
	}
	if r.inOrdered {
		r.emit("</ol>")
	}
	if r.inCode {
		r.emit("</code></pre>")
	}
}

// RenderMarkdown converts the Markdown subset used by drafts to HTML.
//
// Supported: fenced code, blockquotes, # to ### headings, horizontal rules,
// bullet and numbered lists, paragraphs, and inline bold, italic, code and
// links. Inline text outside code blocks is passed through unescaped, so
// drafts may embed raw HTML.
func RenderMarkdown(text string) string {
	r := &mdRenderer{}
	for _, line := range strings.Split(normalizeLineEndings(text), "\n") {
		r.line(line)
	}
	r.close()
	return strings.Join(r.out, blockSeparator)
}
