// Package report renders article outcomes for people and for machines.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/xhad/jaundice/internal/models"
)

const missing = "-"

type TextOptions struct {
	Color   bool
	Elapsed bool // add the analysis time line to OK blocks
}

var statusColors = map[models.ProcessingStatus]color.Attribute{
	models.StatusOK:           color.FgGreen,
	models.StatusFetchError:   color.FgRed,
	models.StatusParsingError: color.FgYellow,
	models.StatusTimeout:      color.FgMagenta,
}

// Item is the JSON shape of one outcome.
type Item struct {
	Status    string   `json:"status"`
	URL       string   `json:"url"`
	Score     *float64 `json:"score"`
	WordCount *int     `json:"word_count"`
}

// Text writes one block per outcome, separated by blank lines.
func Text(w io.Writer, outcomes []models.ArticleOutcome, opts TextOptions) error {
	for i, outcome := range outcomes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeBlock(w, outcome, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(w io.Writer, outcome models.ArticleOutcome, opts TextOptions) error {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", outcome.URL)
	fmt.Fprintf(&b, "Статус: %s\n", colorize(outcome.Status, opts.Color))
	fmt.Fprintf(&b, "Рейтинг: %s\n", formatScore(outcome.Score))
	fmt.Fprintf(&b, "Количество слов: %s\n", formatCount(outcome.WordCount))
	if opts.Elapsed && outcome.Status == models.StatusOK {
		fmt.Fprintf(&b, "Анализ закончен за %.2f сек\n", outcome.Elapsed.Seconds())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func colorize(status models.ProcessingStatus, enabled bool) string {
	attr, ok := statusColors[status]
	if !ok || !enabled {
		return status.String()
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(status.String())
}

// formatScore prints whole scores with one decimal ("20.0") and keeps up to
// two decimals otherwise.
func formatScore(score *float64) string {
	if score == nil {
		return missing
	}
	s := strconv.FormatFloat(*score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatCount(count *int) string {
	if count == nil {
		return missing
	}
	return strconv.Itoa(*count)
}

// JSON projects outcomes onto Items, keeping their order.
func JSON(outcomes []models.ArticleOutcome) []Item {
	items := make([]Item, 0, len(outcomes))
	for _, outcome := range outcomes {
		items = append(items, NewItem(outcome))
	}
	return items
}

func NewItem(outcome models.ArticleOutcome) Item {
	return Item{
		Status:    outcome.Status.String(),
		URL:       outcome.URL,
		Score:     outcome.Score,
		WordCount: outcome.WordCount,
	}
}

type Summary struct {
	Total    int
	ByStatus map[models.ProcessingStatus]int
}

func Summarize(outcomes []models.ArticleOutcome) Summary {
	summary := Summary{
		Total:    len(outcomes),
		ByStatus: make(map[models.ProcessingStatus]int, len(models.Statuses)),
	}
	for _, outcome := range outcomes {
		summary.ByStatus[outcome.Status]++
	}
	return summary
}

// String lists every known status, including those with a zero count.
func (s Summary) String() string {
	parts := []string{fmt.Sprintf("Всего: %d", s.Total)}
	for _, status := range models.Statuses {
		parts = append(parts, fmt.Sprintf("%s: %d", status, s.ByStatus[status]))
	}
	return strings.Join(parts, ", ")
}
