package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/qualifying"
	"ReadinessBot/internal/scoring"

	"github.com/go-telegram/bot/models"
)

// Callback data. Telegram limits it to 64 bytes, so criteria and options
// are addressed by their index within the current main element.
const (
	cbQuizStart    = "q:s"
	cbQuizBack     = "q:b"
	cbQuizRetake   = "q:r"
	cbEvalOverview = "e:v"
	cbEvalNext     = "e:n"
	cbEvalPrev     = "e:p"
	cbEvalMenu     = "e:m"
	cbEvalFinish   = "e:f"
)

func quizOptionData(questionID int, optionID string) string {
	return fmt.Sprintf("q:o:%d:%s", questionID, optionID)
}

func criterionData(ci int) string    { return fmt.Sprintf("e:c:%d", ci) }
func optionData(ci, oi int) string   { return fmt.Sprintf("e:o:%d:%d", ci, oi) }
func clearData(ci int) string        { return fmt.Sprintf("e:x:%d", ci) }
func gotoData(elementIdx int) string { return fmt.Sprintf("e:g:%d", elementIdx) }

type callbackData struct {
	scope  string
	action string
	args   []string
}

func parseCallbackData(data string) (callbackData, bool) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return callbackData{}, false
	}
	return callbackData{scope: parts[0], action: parts[1], args: parts[2:]}, true
}

func (c callbackData) intArg(i int) (int, bool) {
	if i >= len(c.args) {
		return 0, false
	}
	n, err := strconv.Atoi(c.args[i])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (c callbackData) stringArg(i int) (string, bool) {
	if i >= len(c.args) || c.args[i] == "" {
		return "", false
	}
	return c.args[i], true
}

// ─── qualifying quiz ──────────────────────────────────────────────────────

// renderQuizWelcome shows the quiz intro; last, when set, is the previous result.
func renderQuizWelcome(questions []domain.Question, last *domain.Assessment) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("📝 Qualifying assessment\n\n"+
		"%d short questions check whether your organization is ready for a full "+
		"excellence evaluation. You need %d of %.0f points to qualify.",
		len(questions), qualifying.QualificationThreshold, qualifying.MaxFor(questions))
	if last != nil {
		verdict := "not qualified"
		if last.IsQualified {
			verdict = "qualified"
		}
		text += fmt.Sprintf("\n\nYour last result: %.1f of %.0f, %s.", last.TotalScore, last.MaxScore, verdict)
	}
	return text, inlineKeyboard(inlineRow(inlineBtn("▶️ Start", cbQuizStart)))
}

func renderQuestion(q *qualifying.Quiz) (string, *models.InlineKeyboardMarkup) {
	question, ok := q.Current()
	if !ok {
		return "❌ No question to show.", nil
	}
	selected, _ := q.Selected()

	text := fmt.Sprintf("Question %d/%d\n\n%s", q.Index()+1, q.Len(), question.Text)

	var rows [][]models.InlineKeyboardButton
	for _, o := range question.Options {
		label := o.Label
		if o.ID == selected {
			label = "✅ " + label
		}
		rows = append(rows, inlineRow(inlineBtn(label, quizOptionData(question.ID, o.ID))))
	}
	if q.Index() > 0 {
		rows = append(rows, inlineRow(inlineBtn("⬅️ Back", cbQuizBack)))
	}
	return text, inlineKeyboard(rows...)
}

func renderQuizResult(res domain.AssessmentResult) (string, *models.InlineKeyboardMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Qualifying result: %.1f of %.0f points\n\n", res.TotalScore, res.MaxScore)
	if res.IsQualified {
		b.WriteString("✅ Your organization qualifies. Continue with /evaluate.")
	} else {
		fmt.Fprintf(&b, "❌ %d points are needed to qualify. Strengthen the basics and retake the assessment.",
			qualifying.QualificationThreshold)
	}
	return b.String(), inlineKeyboard(inlineRow(inlineBtn("🔁 Retake", cbQuizRetake)))
}

// ─── evaluation ───────────────────────────────────────────────────────────

func answerMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "▫️"
}

func renderElement(s *evaluation.Session) (string, *models.InlineKeyboardMarkup) {
	me := s.CurrentElement()
	answers := s.Answers()

	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s (%d/%d) · weight %.0f\n", me.Name, s.CurrentIndex()+1, s.Len(), me.WeightPercentage)
	if me.Description != "" {
		fmt.Fprintf(&b, "%s\n", me.Description)
	}

	var rows [][]models.InlineKeyboardButton
	ci := 0
	for _, se := range me.SubElements {
		fmt.Fprintf(&b, "\n%s\n", se.Name)
		for _, c := range se.Criteria {
			a, answered := answers[c.ID]
			line := fmt.Sprintf("%s %s", answerMark(answered), c.Name)
			if answered {
				if o, ok := c.Option(a.SelectedOptionID); ok {
					line += ": " + o.Label
				}
			}
			b.WriteString(line + "\n")
			rows = append(rows, inlineRow(inlineBtn(answerMark(answered)+" "+c.Name, criterionData(ci))))
			ci++
		}
	}

	p := s.Progress()
	fmt.Fprintf(&b, "\nAnswered %d of %d criteria (%d%%)", p.Current, p.Total, p.Percentage)

	var nav []models.InlineKeyboardButton
	if !s.IsFirst() {
		nav = append(nav, inlineBtn("⬅️ Back", cbEvalPrev))
	}
	nav = append(nav, inlineBtn("📑 Sections", cbEvalMenu))
	if !s.IsLast() {
		nav = append(nav, inlineBtn("Next ➡️", cbEvalNext))
	}
	rows = append(rows, nav)
	if s.IsLast() {
		rows = append(rows, inlineRow(inlineBtn("🏁 Finish", cbEvalFinish)))
	}

	return b.String(), inlineKeyboard(rows...)
}

func renderCriterion(s *evaluation.Session, ci int) (string, *models.InlineKeyboardMarkup, bool) {
	criteria := s.CurrentElement().Criteria()
	if ci < 0 || ci >= len(criteria) {
		return "", nil, false
	}
	c := criteria[ci]
	a, answered := s.Answer(c.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "🔎 %s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Description)
	}
	fmt.Fprintf(&b, "\nWeight: %.0f points", c.WeightPercentage)

	var rows [][]models.InlineKeyboardButton
	for oi, o := range c.Options {
		label := fmt.Sprintf("%s (%.0f%%)", o.Label, o.ScorePercentage)
		if answered && a.SelectedOptionID == o.ID {
			label = "✅ " + label
		}
		rows = append(rows, inlineRow(inlineBtn(label, optionData(ci, oi))))
	}
	back := []models.InlineKeyboardButton{inlineBtn("↩️ Back", cbEvalOverview)}
	if answered {
		back = append(back, inlineBtn("🧹 Clear", clearData(ci)))
	}
	rows = append(rows, back)

	return b.String(), inlineKeyboard(rows...), true
}

func renderElementMenu(s *evaluation.Session) (string, *models.InlineKeyboardMarkup) {
	answers := s.Answers()
	var rows [][]models.InlineKeyboardButton
	for i, me := range s.Domain().MainElements {
		p := scoring.ElementProgress(me, answers)
		label := fmt.Sprintf("%s %s (%d/%d)", answerMark(p.Complete), me.Name, p.Current, p.Total)
		rows = append(rows, inlineRow(inlineBtn(label, gotoData(i))))
	}
	rows = append(rows, inlineRow(inlineBtn("↩️ Back", cbEvalOverview)))
	return "📑 Sections", inlineKeyboard(rows...)
}

func renderScores(d *domain.Domain, snap scoring.Snapshot, progress scoring.Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n\n", d.Name)
	for _, e := range snap.Elements {
		fmt.Fprintf(&b, "%s: %.2f / %.0f (%d%%)\n", e.Name, e.Score, e.Max, e.Percentage())
	}
	fmt.Fprintf(&b, "\nTotal: %.2f / %.0f (%d%%)\n", snap.Total, snap.Max, snap.Percentage)
	fmt.Fprintf(&b, "Level: %s\n", snap.Band())
	fmt.Fprintf(&b, "Answered: %d of %d", progress.Current, progress.Total)
	if snap.MeetsReadiness() {
		b.WriteString("\n\n✅ Ready for the formal assessment.")
	}
	return b.String()
}
