package slug

import (
	"path"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var spanish = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// Generate lowercases name, transliterates Spanish accents and joins the
// remaining alphanumeric runs with single hyphens.
//
//	"Panadería La Espiga" → "panaderia-la-espiga"
//	"Año  Nuevo!"        → "ano-nuevo"
func Generate(name string) string {
	s := spanish.Replace(strings.TrimSpace(name))
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Filename slugs the base name of an uploaded file and keeps a short
// alphanumeric extension. When nothing usable remains, fallback is used as
// the base name.
func Filename(name, fallback string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	ext = nonAlnum.ReplaceAllString(strings.ToLower(ext), "")
	if len(ext) > 5 {
		ext = ""
	}

	base = Generate(base)
	if base == "" {
		base = fallback
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}
