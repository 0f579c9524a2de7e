package render

import (
	"html/template"
	"io"
)

var feedTemplate = template.Must(template.New("feed").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Feedback</title></head>
<body>
<main id="feedback-list">
{{- if .Feed.Empty}}
  <div class="feed-empty">
    <h2>{{.Feed.EmptyTitle}}</h2>
    <p>{{.Feed.EmptyHint}}</p>
  </div>
{{- else}}
{{- range .Feed.Cards}}
  <div class="feed-item{{if .Pending}} pending{{end}}" data-id="{{.Key}}">
    <div class="feed-subject">{{.Issue}}</div>
    <div class="feed-text">
      <strong>Impact:</strong><br>{{.Impact}}<br><br>
      <strong>Suggestion:</strong><br>{{.Suggestion}}
    </div>
    <div class="post-meta">{{.Theme}} • {{.Date}} • <span class="author-label">{{.AuthorLabel}}</span></div>
    <button class="upvote-btn{{if .Upvoted}} active{{end}}"{{if .Pending}} disabled{{end}}>👍 {{.Upvotes}}</button>
    <button class="toggle-updates-btn">{{.UpdatesToggle}}</button>
    {{- if .CanAddUpdate}}
    <button type="button" class="add-update-button">Add update</button>
    {{- end}}
    {{- if .UpdatesVisible}}
    <div class="updates-list">
      {{- if .UpdatesLoading}}<div class="loading">Loading updates...</div>{{end}}
      {{- if .UpdatesEmpty}}<div class="no-updates">No updates yet.</div>{{end}}
      {{- range .Updates}}
      <div class="feedback-update"><div class="update-meta"><strong>{{.Role}}</strong> <span>{{.When}}</span></div><div class="update-text">{{.Content}}</div></div>
      {{- end}}
    </div>
    {{- end}}
  </div>
{{- end}}
{{- end}}
</main>
{{- if .WebsocketURL}}
<script>
(function () {
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + {{.WebsocketURL}});
  ws.onmessage = function (ev) {
    try { if (JSON.parse(ev.data).type === "feed.changed") location.reload(); } catch (e) {}
  };
})();
</script>
{{- end}}
</body>
</html>
`))

// Page is the data behind the HTML feed page.
type Page struct {
	Feed Feed
	// WebsocketURL, when set, makes the page reload on feed events.
	WebsocketURL string
}

// WriteHTML renders p as a standalone HTML document. All post content is
// escaped.
func WriteHTML(w io.Writer, p Page) error {
	return feedTemplate.Execute(w, p)
}
