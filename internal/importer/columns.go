package importer

import (
	"strings"

	"github.com/talentdesk/talentdesk/internal/schema"
)

type field int

const (
	fieldUnknown field = iota
	fieldName
	fieldBrand
	fieldFee
	fieldStatus
	fieldCount
	fieldCategory
	fieldImage
	fieldPhone
	fieldEmail
	fieldInstagram
	fieldTikTok
)

// headerAliases lists accepted header spellings per field, already in
// normalized form.
var headerAliases = map[string]field{
	"name":               fieldName,
	"isim":               fieldName,
	"ad":                 fieldName,
	"adsoyad":            fieldName,
	"brand":              fieldBrand,
	"marka":              fieldBrand,
	"fee":                fieldFee,
	"ücret":              fieldFee,
	"ücret(₺)":           fieldFee,
	"status":             fieldStatus,
	"durum":              fieldStatus,
	"collaborationcount": fieldCount,
	"işbirliğisayısı":    fieldCount,
	"category":           fieldCategory,
	"kategori":           fieldCategory,
	"image":              fieldImage,
	"profilresmi":        fieldImage,
	"phone":              fieldPhone,
	"telefon":            fieldPhone,
	"email":              fieldEmail,
	"eposta":             fieldEmail,
	"instagram":          fieldInstagram,
	"tiktok":             fieldTikTok,
}

// normalizeHeader folds case and drops separators so "E-posta",
// "e posta" and "EPOSTA" compare equal.
func normalizeHeader(h string, fold func(string) string) string {
	h = fold(strings.TrimPrefix(h, "\uFEFF"))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, h)
}

// lookupField tries Turkish case folding first, then plain folding so that
// English headers typed in capitals ("INSTAGRAM") still match.
func lookupField(header string) field {
	if f, ok := headerAliases[normalizeHeader(header, schema.Fold)]; ok {
		return f
	}
	return headerAliases[normalizeHeader(header, strings.ToLower)]
}
