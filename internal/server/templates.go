package server

import "html/template"

// pageView is the data for the search page.
type pageView struct {
	Term        string
	Results     template.HTML
	Visible     bool
	Modal       bool
	BodyClasses string
	Error       string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Search</title>
</head>
<body{{with .BodyClasses}} class="{{.}}"{{end}}>
<form id="lunrsearch" action="/search" method="get">
<input type="text" name="q" id="lunrsearch-input" value="{{.Term}}" placeholder="Search...">
<button type="submit">Search</button>
</form>
{{with .Error}}<p class="search-error">{{.}}</p>{{end}}
<div id="lunrsearchresults"{{if and .Modal (not .Visible)}} style="display: none"{{end}}>{{.Results}}</div>
{{if .Modal}}<script>
document.querySelectorAll("#btnx").forEach(function (btn) {
  btn.addEventListener("click", function () {
    fetch("/dismiss", {method: "POST", headers: {"X-Requested-With": "fetch"}, credentials: "same-origin"}).then(function () {
      document.getElementById("lunrsearchresults").style.display = "none";
      document.body.classList.remove("modal-open");
    });
    return false;
  });
});
</script>{{end}}
</body>
</html>
`))
