package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

// pageTemplate renders an InteractiveDocument as one self-contained HTML
// page: sidebar file list, highlighted sections, skipped-file summary and a
// client-side substring search over the embedded index. Presentation only;
// the document model is computed by Interactive.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — flattened</title>
<style>
body { margin: 0; font-family: system-ui, sans-serif; font-size: 14px; background: #1e1e1e; color: #ccc; }
a { color: #4ea1ff; text-decoration: none; }
.layout { display: grid; grid-template-columns: 320px minmax(0, 1fr); height: 100vh; }
.sidebar { overflow-y: auto; border-right: 1px solid #3e3e42; padding: 12px; background: #252526; }
.content { overflow-y: auto; padding: 16px; }
.section { margin-bottom: 20px; border: 1px solid #3e3e42; border-radius: 6px; }
.section header { padding: 6px 10px; background: #2d2d30; font-family: monospace; display: flex; justify-content: space-between; }
.section pre { margin: 0; padding: 10px; overflow-x: auto; }
.muted { color: #888; font-size: 12px; }
ul { list-style: none; padding-left: 0; margin: 6px 0; }
li { margin: 2px 0; overflow-wrap: anywhere; }
#search { width: 100%; box-sizing: border-box; padding: 6px; background: #1e1e1e; color: #ccc; border: 1px solid #3e3e42; border-radius: 4px; }
pre.tree { font-size: 12px; color: #9d9d9d; }
{{.CSS}}
</style>
</head>
<body>
<div class="layout">
<nav class="sidebar">
<h2>{{.Repo}}</h2>
<p class="muted">{{.Stats.Included}} files rendered, {{len .Skipped}} skipped · generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
<input id="search" type="search" placeholder="Search file contents…" autocomplete="off">
<ul id="results"></ul>
<ul id="toc">
{{range .Files}}<li><a href="#{{.Anchor}}">{{.Path}}</a> <span class="muted">{{.SizeHuman}}</span></li>
{{end}}</ul>
</nav>
<main class="content">
<details><summary>Directory tree</summary><pre class="tree">{{.Tree}}</pre></details>
{{range .Files}}<section class="section" id="{{.Anchor}}">
<header><span>{{.Path}}</span><span class="muted">{{with .Language}}{{.}} · {{end}}{{.SizeHuman}}</span></header>
{{.HTML}}
</section>
{{end}}
{{if .Skipped}}<details class="section"><summary>Skipped files ({{len .Skipped}})</summary><ul>
{{range .Skipped}}<li><code>{{.Path}}</code> <span class="muted">{{.Reason}}{{with .Detail}}: {{.}}{{end}} ({{.SizeHuman}})</span></li>
{{end}}</ul></details>{{end}}
</main>
</div>
<script>
const index = {{.SearchJSON}};
const input = document.getElementById("search");
const results = document.getElementById("results");
input.addEventListener("input", () => {
  const q = input.value.trim().toLowerCase();
  results.innerHTML = "";
  if (q.length < 2) return;
  for (const entry of index) {
    if (entry.text.includes(q) || entry.path.toLowerCase().includes(q)) {
      const li = document.createElement("li");
      const a = document.createElement("a");
      a.href = "#" + entry.anchor;
      a.textContent = entry.path;
      li.appendChild(a);
      results.appendChild(li);
    }
  }
});
</script>
</body>
</html>
`))

// pageData wraps the model with the search index pre-marshaled for the
// script block.
type pageData struct {
	*InteractiveDocument
	SearchJSON template.JS
}

// WritePage renders the interactive document as a standalone HTML page.
func WritePage(w io.Writer, doc *InteractiveDocument) error {
	searchJSON, err := json.Marshal(doc.Search)
	if err != nil {
		return fmt.Errorf("marshaling search index: %w", err)
	}
	return pageTemplate.Execute(w, pageData{
		InteractiveDocument: doc,
		SearchJSON:          template.JS(searchJSON),
	})
}
