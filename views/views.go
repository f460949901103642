package views

import (
	"embed"
	"html/template"
	"net/url"
	"time"

	"github.com/Sosuo3773/openlab-mini/config"
	"github.com/Sosuo3773/openlab-mini/models"
	"github.com/Sosuo3773/openlab-mini/utils"
)

//go:embed templates/*.html
var files embed.FS

// Names of the renderable pages.
const (
	Index    = "index"
	Category = "category"
	Post     = "post"
	NewPost  = "new"
	Error    = "error"
)

// Page is the data every template receives. Each page reads only the fields
// it needs.
type Page struct {
	Title string
	Site  config.SiteConfig

	Categories []string
	Category   string
	Posts      []models.Post
	Post       *models.Post
	Threads    []*models.Thread
	Comments   int

	Status  int
	Message string
}

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"sanitize":   utils.SafeHTML,
	"pathEscape": url.PathEscape,
}

// Load parses the embedded templates into one set.
func Load() (*template.Template, error) {
	return template.New("").Funcs(functions).ParseFS(files, "templates/*.html")
}
