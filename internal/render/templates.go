package render

import "html/template"

// templates share one "entries" definition; the wrappers differ only in
// the surrounding markup.
var templates = template.Must(template.New("render").Parse(`
{{- define "entries" -}}
{{- if .Results -}}
{{- range .Results -}}
<li class="lunrsearchresult"><a href="{{.URL}}"><span class="title">{{.Title}}</span><br />
{{- if $.Compact}}<small>{{end -}}
<span class="body">{{.Snippet}}</span><br /><span class="url">{{.URL}}</span>
{{- if $.Compact}}</small>{{end -}}
</a></li>
{{- end -}}
{{- else -}}
<li class="lunrsearchresult">{{.NoResults}}</li>
{{- end -}}
{{- end -}}

{{- define "inline" -}}
{{- if .Term}}<p>Search results for '{{.Term}}'</p>{{end -}}
<ul>{{if .Term}}{{template "entries" .}}{{end}}</ul>
{{- end -}}

{{- define "modal" -}}
<div id="resultsmodal" class="modal fade show d-block" tabindex="-1" role="dialog" aria-labelledby="resultsmodal"> <div class="modal-dialog shadow-lg" role="document"> <div class="modal-content"> <div class="modal-header" id="modtit">
{{- if .Term}}<h5 class="modal-title">Search results for '{{.Term}}'</h5>{{end -}}
{{" "}}<button type="button" class="close" id="btnx" data-dismiss="modal" aria-label="Close"> &times; </button> </div> <div class="modal-body"> <ul class="mb-0">
{{- if .Term}}{{template "entries" .}}{{end -}}
</ul> </div> <div class="modal-footer"><button id="btnx" type="button" class="btn btn-danger btn-sm" data-dismiss="modal">Close</button></div></div> </div></div>
{{- end -}}
`))
