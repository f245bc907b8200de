package session

import "strings"

const (
	HomePath    = "/"
	LoginPath   = "/login"
	WelcomePath = "/welcome"
)

// Decision tells the client whether to render path or go elsewhere.
type Decision struct {
	Path     string `json:"path"`
	Redirect string `json:"redirect,omitempty"`
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Resolve applies the page routing rules:
//
//	unauthenticated, any page but /login      -> /login
//	authenticated, /login                     -> / (or /welcome before onboarding)
//	not answered, any page but /welcome       -> /welcome
//	answered, /welcome                        -> /
func Resolve(path string, authenticated, answeredQA bool) Decision {
	path = cleanPath(path)
	d := Decision{Path: path}

	if !authenticated {
		if path != LoginPath {
			d.Redirect = LoginPath
		}
		return d
	}

	if !answeredQA {
		if path != WelcomePath {
			d.Redirect = WelcomePath
		}
		return d
	}

	if path == LoginPath || path == WelcomePath {
		d.Redirect = HomePath
	}
	return d
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
