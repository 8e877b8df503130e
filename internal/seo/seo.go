package seo

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cisd/recruitment-portal/internal/application"

	"github.com/pkg/errors"
	"github.com/snabb/sitemap"
)

type Page struct {
	Path       string
	ChangeFreq sitemap.ChangeFreq
	Priority   float32
}

// PublicPages lists the landing page and one apply form per job category.
func PublicPages() []Page {
	pages := []Page{{Path: "/", ChangeFreq: sitemap.Weekly, Priority: 1}}
	for _, c := range application.Categories {
		pages = append(pages, Page{
			Path:       fmt.Sprintf("/apply/%s", c),
			ChangeFreq: sitemap.Monthly,
			Priority:   0.8,
		})
	}
	return pages
}

func Sitemap(baseURL string, lastMod time.Time) ([]byte, error) {
	sm := sitemap.New()
	for _, p := range PublicPages() {
		sm.Add(&sitemap.URL{
			Loc:        baseURL + p.Path,
			LastMod:    &lastMod,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}
	buf := new(bytes.Buffer)
	if _, err := sm.WriteTo(buf); err != nil {
		return nil, errors.Wrap(err, "unable to write sitemap")
	}
	return buf.Bytes(), nil
}

func RobotsTxt(baseURL string) string {
	return fmt.Sprintf("User-agent: *\nDisallow: /admin\nDisallow: /login\nAllow: /\n\nSitemap: %s/sitemap.xml\n", baseURL)
}
