// Package views 最小化的页面模板
//
// 页面只承载表单与闪存消息的展示，样式与前端交互不在范围内。
// 闪存字段在解码时已做 HTML 转义，这里直接输出。
package views

import (
	"fmt"
	"html/template"
	"net/http"

	"job-board/internal/model"
	"job-board/internal/webserver/flash"
)

// Data 模板渲染上下文
type Data struct {
	Flash    *flash.Message
	Username string
	Email    string
	Listing  *model.Listing
	Listings []*model.Listing
}

const layout = `<!DOCTYPE html>
<html>
<head><title>Job Board</title></head>
<body>
{{- with .Flash}}
<div class="flash flash-{{.Type}}">{{.Text}}</div>
{{- end}}
{{template "content" .}}
</body>
</html>`

var pages = map[string]string{
	"signup": `{{define "content"}}
<h1>Sign up</h1>
<form method="POST" action="/signup">
  <input name="fname" placeholder="Full name">
  <input name="username" placeholder="Username">
  <input name="email" placeholder="Email">
  <input name="password" type="password" placeholder="Password">
  <input name="passwordConfirmation" type="password" placeholder="Confirm password">
  <button type="submit">Sign up</button>
</form>
<a href="/login">Log in</a>
{{end}}`,

	"login": `{{define "content"}}
<h1>Log in</h1>
<form method="POST" action="/login">
  <input name="email" placeholder="Email" value="{{with .Flash}}{{.Email}}{{end}}">
  <input name="password" type="password" placeholder="Password">
  <button type="submit">Log in</button>
</form>
<a href="/signup">Sign up</a>
{{end}}`,

	"dashboard": `{{define "content"}}
<h1>Dashboard</h1>
<p>Logged in as {{.Username}}</p>
<form method="POST" action="/logout"><button type="submit">Log out</button></form>
<a href="/listings/new">New listing</a>
<ul>
{{- range .Listings}}
  <li><a href="/listings/{{.ID.Hex}}">{{.Title}}</a> [{{.Status}}] {{.Type}} / {{.Lang}}</li>
{{- end}}
</ul>
{{end}}`,

	"listing_new": `{{define "content"}}
<h1>New listing</h1>
<form method="POST" action="/listings">
  <input name="title" placeholder="Title">
  <select name="type">
    <option>LONG_TERM</option><option>SHORT_TERM</option><option>FULL_TIME</option>
  </select>
  <textarea name="description"></textarea>
  <input name="lang" placeholder="Language">
  <input name="budget" placeholder="Budget">
  <input name="dueDate" type="date">
  <label><input name="isOnline" type="checkbox"> Online</label>
  <button type="submit">Post</button>
</form>
{{end}}`,

	"listing_detail": `{{define "content"}}
{{- with .Listing}}
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<dl>
  <dt>Type</dt><dd>{{.Type}}</dd>
  <dt>Language</dt><dd>{{.Lang}}</dd>
  <dt>Status</dt><dd>{{.Status}}</dd>
  {{- with .Budget}}<dt>Budget</dt><dd>{{.}}</dd>{{end}}
  <dt>Due</dt><dd>{{.DueDate.Format "2006-01-02"}}</dd>
</dl>
<a href="/listings/{{.ID.Hex}}/edit">Edit</a>
{{- end}}
<a href="/dashboard">Back</a>
{{end}}`,

	"listing_edit": `{{define "content"}}
{{- with .Listing}}
<h1>Edit listing</h1>
<form method="POST" action="/listings/{{.ID.Hex}}">
  <input type="hidden" name="_method" value="PUT">
  <input name="title" value="{{.Title}}">
  <input name="type" value="{{.Type}}">
  <textarea name="description">{{.Description}}</textarea>
  <input name="lang" value="{{.Lang}}">
  <input name="budget" value="{{with .Budget}}{{.}}{{end}}">
  <input name="dueDate" type="date" value="{{.DueDate.Format "2006-01-02"}}">
  <label><input name="isOnline" type="checkbox" {{if .IsOnline}}checked{{end}}> Online</label>
  <input name="status" value="{{.Status}}">
  <button type="submit">Save</button>
</form>
{{- end}}
<a href="/dashboard">Back</a>
{{end}}`,

	"not_found": `{{define "content"}}
<h1>404</h1>
<p>The listing you are looking for does not exist.</p>
<a href="/dashboard">Back</a>
{{end}}`,
}

var templates = make(map[string]*template.Template)

func init() {
	for name, content := range pages {
		templates[name] = template.Must(
			template.Must(template.New(name).Parse(layout)).Parse(content))
	}
}

// Render 渲染指定页面
func Render(w http.ResponseWriter, status int, name string, data Data) error {
	tmpl, ok := templates[name]
	if !ok {
		return fmt.Errorf("views: unknown template %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.Execute(w, data)
}

// NotFound 渲染 404 页面
func NotFound(w http.ResponseWriter, data Data) {
	Render(w, http.StatusNotFound, "not_found", data)
}
