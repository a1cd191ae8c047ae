package scrape

import (
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// minContentLength is the minimum readability TextContent length for the
// extraction to be considered valid. Below it we assume the algorithm missed
// the main content and convert the raw HTML instead.
const minContentLength = 50

// Cleaner turns raw page HTML into LLM-ready markdown.
type Cleaner struct {
	conv *converter.Converter
}

// NewCleaner builds a Cleaner with a reusable markdown converter: base
// plugin strips script/style/head noise, commonmark renders standard
// markdown, and the table plugin keeps tabular data with minimal cell
// padding to save tokens.
func NewCleaner() *Cleaner {
	return &Cleaner{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Clean runs readability over rawHTML and converts the result to markdown.
// When readability fails or finds too little text, the raw HTML is converted
// instead so the run never dies on a stubborn page. The returned title is
// empty when the fallback was used and the page supplied none.
func (c *Cleaner) Clean(rawHTML, sourceURL string) (title, markdown string, err error) {
	content := rawHTML

	if parsed, perr := nurl.Parse(sourceURL); perr == nil {
		article, rerr := readability.FromReader(strings.NewReader(rawHTML), parsed)
		switch {
		case rerr != nil:
			zap.L().Warn("scrape: readability failed, converting raw HTML",
				zap.String("url", sourceURL), zap.Error(rerr))
		case len(strings.TrimSpace(article.TextContent)) < minContentLength:
			zap.L().Warn("scrape: readability output too short, converting raw HTML",
				zap.String("url", sourceURL), zap.Int("length", len(article.TextContent)))
		default:
			content = article.Content
			title = article.Title
		}
	}

	domain := ""
	if parsed, perr := nurl.Parse(sourceURL); perr == nil {
		domain = parsed.Scheme + "://" + parsed.Host
	}

	markdown, err = c.conv.ConvertString(content, converter.WithDomain(domain))
	if err != nil {
		return "", "", eris.Wrap(err, "scrape: convert to markdown")
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", "", eris.New("scrape: page produced no content")
	}
	return title, markdown, nil
}
