package http

import (
	"html/template"
	"time"

	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
)

// RegionsPlaceholder is the example shown in an empty regions field.
const RegionsPlaceholder = `[ {"name": "Region A", "need": 20, "urgency": 9} ]`

const pageTitle = "Weather Crisis Resource Allocation System"

type pageData struct {
	Title       string
	Placeholder string
	Inputs      session.Inputs
	Pending     bool

	HasResult  bool
	Result     string
	StatusCode int

	Error    string
	Category domain.Category
}

func newPageData(snap session.Snapshot) pageData {
	data := pageData{
		Title:       pageTitle,
		Placeholder: RegionsPlaceholder,
		Inputs:      snap.Inputs,
		Pending:     snap.Pending,
	}
	if snap.Outcome == nil {
		return data
	}
	if !snap.Outcome.OK() {
		data.Error = snap.Outcome.Err.Error()
		data.Category = snap.Outcome.Category()
		return data
	}
	data.Result, data.HasResult = domain.RenderResult(snap.Outcome.Result)
	data.StatusCode = snap.Outcome.Result.StatusCode
	return data
}

// resultsView is the JSON body of GET /results.
type resultsView struct {
	Status       session.Status           `json:"status"`
	SubmissionID string                   `json:"submission_id,omitempty"`
	Result       *domain.AllocationResult `json:"result,omitempty"`
	StatusCode   int                      `json:"status_code,omitempty"`
	Category     domain.Category          `json:"category,omitempty"`
	Error        string                   `json:"error,omitempty"`
	CompletedAt  *time.Time               `json:"completed_at,omitempty"`
}

func newResultsView(snap session.Snapshot) resultsView {
	view := resultsView{Status: snap.Status()}
	o := snap.Outcome
	if o == nil {
		return view
	}
	view.SubmissionID = o.SubmissionID
	view.CompletedAt = &o.CompletedAt
	if o.OK() {
		result := o.Result
		view.Result = &result
		view.StatusCode = o.Result.StatusCode
		return view
	}
	view.Category = o.Category()
	view.Error = o.Err.Error()
	return view
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body style="padding: 2rem">
<h1>{{.Title}}</h1>
<form method="post" action="/submit">
<textarea name="regions" rows="6" style="width: 400px" placeholder="{{.Placeholder}}">{{.Inputs.Regions}}</textarea>
<br>
<input type="number" name="supplies" step="any" value="{{.Inputs.Supplies}}">
<input type="number" name="capacity" min="0" step="1" placeholder="capacity (optional)" value="{{.Inputs.Capacity}}">
<button type="submit">Submit</button>
</form>
{{- if .Pending}}
<p id="pending">Submitting&hellip;</p>
{{- end}}
{{- if .Error}}
<div id="error" style="margin-top: 2rem; color: #b00020">
<h2>Submission failed</h2>
<p data-category="{{.Category}}">{{.Error}}</p>
</div>
{{- end}}
{{- if .HasResult}}
<div id="results" style="margin-top: 2rem">
<h2>Results</h2>
<pre>{{.Result}}</pre>
</div>
{{- end}}
</body>
</html>
`))
