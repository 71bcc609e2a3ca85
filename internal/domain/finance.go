package domain

import (
	"fmt"
	"math"
	"time"
)

// Sale is a revenue row.
type Sale struct {
	ID          string
	Reference   string
	TotalAmount float64
	SaleDate    time.Time
	Department  string
	CreatedAt   time.Time
}

// Expense is a cost row.
type Expense struct {
	ID          string
	Reference   string
	Amount      float64
	Category    string
	Department  string
	ExpenseDate time.Time
	CreatedAt   time.Time
}

// Trend classifies a month-over-month change.
type Trend string

const (
	TrendStrongUp   Trend = "strong_up"
	TrendUp         Trend = "up"
	TrendNeutral    Trend = "neutral"
	TrendDown       Trend = "down"
	TrendStrongDown Trend = "strong_down"
)

// Tone is whether an insight reads as good, bad or neutral news.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

// TrendFor maps a percentage change to its trend and tone.
func TrendFor(changePercent float64) (Trend, Tone) {
	switch {
	case changePercent > 20:
		return TrendStrongUp, TonePositive
	case changePercent > 5:
		return TrendUp, TonePositive
	case changePercent >= -5:
		return TrendNeutral, ToneNeutral
	case changePercent >= -20:
		return TrendDown, ToneNegative
	default:
		return TrendStrongDown, ToneNegative
	}
}

// Insight is one line of the monthly insights panel.
type Insight struct {
	Text  string `json:"text"`
	Trend Trend  `json:"trend,omitempty"`
	Tone  Tone   `json:"tone"`
}

// MonthlyInsights summarizes one month of sales and expenses against the previous month.
type MonthlyInsights struct {
	Month           string    `json:"month"`
	Department      string    `json:"department"`
	Revenue         float64   `json:"revenue"`
	Expenses        float64   `json:"expenses"`
	NetProfit       float64   `json:"net_profit"`
	PreviousRevenue float64   `json:"previous_revenue"`
	PreviousProfit  float64   `json:"previous_profit"`
	RevenueChange   *float64  `json:"revenue_change_percent,omitempty"`
	ProfitChange    *float64  `json:"profit_change_percent,omitempty"`
	PredictedProfit float64   `json:"predicted_profit"`
	Insights        []Insight `json:"insights"`
}

// MonthBounds returns the first day of month and of the following month.
func MonthBounds(month time.Time) (time.Time, time.Time) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ProjectProfit extrapolates the month's daily averages to the full month.
// Past months use every day; the current month uses the days elapsed so far.
func ProjectProfit(month, now time.Time, revenue, expenses float64) float64 {
	start, next := MonthBounds(month)
	daysInMonth := int(next.Sub(start).Hours() / 24)
	daysPassed := daysInMonth
	if now.Year() == start.Year() && now.Month() == start.Month() {
		daysPassed = now.Day()
	}
	if daysPassed <= 0 {
		return 0
	}
	days := float64(daysInMonth)
	return revenue/float64(daysPassed)*days - expenses/float64(daysPassed)*days
}

// BuildInsights derives the insight lines for month.
func BuildInsights(month, now time.Time, department string, revenue, expenses, prevRevenue, prevExpenses float64) MonthlyInsights {
	start, _ := MonthBounds(month)
	out := MonthlyInsights{
		Month:           start.Format("2006-01"),
		Department:      department,
		Revenue:         revenue,
		Expenses:        expenses,
		NetProfit:       revenue - expenses,
		PreviousRevenue: prevRevenue,
		PreviousProfit:  prevRevenue - prevExpenses,
	}
	if revenue == 0 && expenses == 0 {
		out.Insights = []Insight{{Text: "No data for " + start.Month().String(), Tone: ToneNegative}}
		return out
	}
	out.PredictedProfit = ProjectProfit(month, now, revenue, expenses)

	if prevRevenue > 0 {
		change := (revenue - prevRevenue) / prevRevenue * 100
		out.RevenueChange = &change
		out.Insights = append(out.Insights, changeInsight("Revenue", change))
	}
	if out.PreviousProfit != 0 {
		change := (out.NetProfit - out.PreviousProfit) / math.Abs(out.PreviousProfit) * 100
		out.ProfitChange = &change
		out.Insights = append(out.Insights, changeInsight("Profit", change))
	}

	expenseTone := ToneNeutral
	if expenses > revenue {
		expenseTone = ToneNegative
	}
	out.Insights = append(out.Insights,
		Insight{Text: fmt.Sprintf("Revenue: %.2f", revenue), Tone: TonePositive},
		Insight{Text: fmt.Sprintf("Expenses: %.2f", expenses), Tone: expenseTone},
		Insight{Text: fmt.Sprintf("Net Profit: %.2f", out.NetProfit), Tone: signTone(out.NetProfit)},
		Insight{Text: fmt.Sprintf("Predicted Profit: %.0f", out.PredictedProfit), Tone: signTone(out.PredictedProfit)},
	)
	return out
}

func changeInsight(label string, change float64) Insight {
	trend, tone := TrendFor(change)
	direction := "up"
	if change < 0 {
		direction = "down"
	}
	return Insight{
		Text:  fmt.Sprintf("%s %s %.0f%% vs last month", label, direction, math.Abs(change)),
		Trend: trend,
		Tone:  tone,
	}
}

func signTone(v float64) Tone {
	if v < 0 {
		return ToneNegative
	}
	return TonePositive
}
