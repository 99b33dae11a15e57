package dashboard

import (
	"html/template"
	"io"
)

// pageTemplate is the whole dashboard page. It is intentionally a single
// self-contained document with inline styles so the binary serves everything
// itself.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Ban Log</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #14161a; color: #e6e7ea; }
  header { display: flex; align-items: baseline; gap: 1.5rem; padding: 1rem 1.5rem; background: #1c1f26; }
  header h1 { font-size: 1.2rem; margin: 0; }
  header .meta { color: #8b929e; font-size: 0.85rem; }
  .banner { padding: 0.6rem 1.5rem; background: #4a1f22; color: #f2b8bd; font-size: 0.9rem; }
  .toolbar { display: flex; gap: 0.75rem; padding: 0.75rem 1.5rem; align-items: center; }
  .toolbar input[type=text] { background: #222630; border: 1px solid #333a47; color: inherit; padding: 0.4rem 0.6rem; border-radius: 4px; width: 18rem; }
  .toolbar button, .toolbar a { background: #2b3240; border: 1px solid #3a4354; color: inherit; padding: 0.4rem 0.8rem; border-radius: 4px; cursor: pointer; text-decoration: none; font-size: 0.85rem; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { text-align: left; padding: 0.55rem 0.9rem; border-bottom: 1px solid #262b34; vertical-align: middle; }
  th { color: #8b929e; font-weight: 500; }
  img.avatar { width: 36px; height: 36px; border-radius: 50%; background: #2b3240; }
  .who { display: flex; align-items: center; gap: 0.6rem; }
  .who .sub { color: #8b929e; font-size: 0.8rem; }
  .status-active { color: #f2b8bd; }
  .status-ended { color: #8b929e; }
  .tag { display: inline-block; background: #2b3240; border-radius: 3px; padding: 0.1rem 0.45rem; font-size: 0.75rem; }
  .time .sub { color: #8b929e; font-size: 0.8rem; }
  .empty { padding: 3rem 1.5rem; color: #8b929e; text-align: center; }
</style>
</head>
<body>
<header>
  <h1>Ban Log</h1>
  <span class="meta">{{.ActiveCount}} active / {{.TotalCount}} shown</span>
  <span class="meta">state: {{.State}}</span>
  <span class="meta">next refresh: {{.Countdown}}</span>
  {{if .LastUpdated}}<span class="meta">updated {{.LastUpdated}}</span>{{end}}
</header>
{{if .Error}}<div class="banner">refresh failed: {{.Error}} — showing last good data</div>{{end}}
<div class="toolbar">
  <form method="get" action="/">
    <input type="text" name="q" value="{{.Query}}" placeholder="Filter bans…">
    <button type="submit">Search</button>
  </form>
  {{if .Query}}<a href="/">Clear</a>{{end}}
  <form method="post" action="/api/refresh">
    <button type="submit">Refresh now</button>
  </form>
</div>
{{if .Records}}
<table>
  <tr><th>User</th><th>Status</th><th>Reason</th><th>Moderator</th><th>When</th></tr>
  {{range .Records}}
  <tr>
    <td>
      <div class="who">
        <img class="avatar" src="{{.AvatarURL}}" alt="">
        <div>
          <div>{{.DisplayName}}</div>
          <div class="sub">@{{.Username}} · {{.UserID}}</div>
        </div>
      </div>
    </td>
    <td class="{{if .Active}}status-active{{else}}status-ended{{end}}">{{.StatusLabel}}</td>
    <td>
      <span class="tag">{{.ReasonTag}}</span>
      {{if .DisplayReason}}<div class="sub">{{.DisplayReason}}</div>{{end}}
      {{if .PrivateReason}}<div class="sub">{{.PrivateReason}}</div>{{end}}
    </td>
    <td>{{.ModeratorID}}</td>
    <td class="time">{{.RelativeTime}}<div class="sub">{{.AbsoluteTime}}</div></td>
  </tr>
  {{end}}
</table>
{{else if .Query}}
<div class="empty">No bans match &ldquo;{{.Query}}&rdquo;.</div>
{{else}}
<div class="empty">No ban records.</div>
{{end}}
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

// RenderPage writes the dashboard page for a built view.
func RenderPage(w io.Writer, view PageView) error {
	return page.Execute(w, view)
}
