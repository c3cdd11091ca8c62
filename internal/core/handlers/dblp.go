package handlers

import (
	"strings"

	"github.com/agenthands/bibalign/internal/core/common"
	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/core/tree"
)

// Publication subtypes that replace a generic Publication record.
var publicationTypes = []string{
	"Book",
	"Article",
	"Inproceedings",
	"Incollection",
	"Editorship",
	"Reference",
	"Data",
	"Informal",
	"Withdrawn",
}

// Literal properties copied onto the subject under a (possibly renamed) field.
var literalFields = map[string]string{
	"title":                         "title",
	"doi":                           "doi",
	"isbn":                          "isbn",
	"webpage":                       "webpage",
	"yearOfEvent":                   "year",
	"yearOfPublication":             "year",
	"documentPage":                  "url",
	"primarydocumentPage":           "url",
	"pagination":                    "pages",
	"publishedInJournal":            "journal",
	"publishedInJournalVolume":      "volume",
	"publishedInJournalVolumeIssue": "number",
	"publishedInBook":               "booktitle",
	"publishedInBookChapter":        "chapter",
	"publishedInSeries":             "series",
	"publishedInSeriesVolume":       "series_volume",
	"publishedBy":                   "publisher",
	"monthOfPublication":            "month",
	"signatureDblpName":             "fullname",
	"signatureOrcid":                "orcid",
	"hasLiteralValue":               "value",
}

// Default returns the registry covering the dblp schema and the datacite
// identifier vocabulary.
func Default() *Registry {
	r := NewRegistry()

	r.Register(IsA, "Publication", func(_ Env, _, obj *tree.Node) repr.Op {
		return repr.InitIfAbsent(repr.NewPublication(common.SimplifyURLName(obj.Name)))
	})
	for _, name := range publicationTypes {
		r.Register(IsA, name, publicationType)
	}
	r.Register(IsA, "AuthorSignature", signature(repr.NameTypeAuthor))
	r.Register(IsA, "EditorSignature", signature(repr.NameTypeEditor))
	r.Register(IsA, "ResourceIdentifier", func(Env, *tree.Node, *tree.Node) repr.Op {
		return repr.Init(repr.NewResourceIdentifier())
	})
	for _, name := range []string{"Signature", "Entity", "Creator", "AmbiguousCreator", "Person", "Group"} {
		r.Register(IsA, name, noop)
	}

	for name, field := range literalFields {
		r.Register(HasA, name, literal(field))
	}
	r.Register(HasA, "publishedIn", func(_ Env, _, obj *tree.Node) repr.Op {
		return repr.SetIfAbsent("venue", obj.Name)
	})
	r.Register(HasA, "signatureOrdinal", signatureOrdinal)
	r.Register(HasA, "signatureCreator", func(_ Env, _, obj *tree.Node) repr.Op {
		return repr.Set("pid", common.PIDFromURI(obj.Name))
	})
	r.Register(HasA, "hasSignature", hasSignature)
	r.Register(HasA, "usesIdentifierScheme", usesIdentifierScheme)
	r.Register(HasA, "hasIdentifier", hasIdentifier)
	for _, name := range []string{"type", "bibtexType", "listedOnTocPage", "signaturePublication"} {
		r.Register(HasA, name, noop)
	}

	return r
}

func publicationType(_ Env, _, obj *tree.Node) repr.Op {
	return repr.Init(repr.NewPublication(common.SimplifyURLName(obj.Name)))
}

func signature(nameType string) Handler {
	return func(Env, *tree.Node, *tree.Node) repr.Op {
		return repr.Init(repr.NewPersonName(nameType))
	}
}

func literal(field string) Handler {
	return func(_ Env, _, obj *tree.Node) repr.Op {
		return repr.Set(field, obj.Name)
	}
}

func signatureOrdinal(_ Env, _, obj *tree.Node) repr.Op {
	ordinal, ok := common.ToInt(obj.Name)
	if !ok {
		return nil
	}
	return repr.Set("ordinal", ordinal)
}

// hasSignature appends the signature's person name to the publication's
// author or editor list.
func hasSignature(env Env, _, obj *tree.Node) repr.Op {
	name, ok := env.Record(obj.ID).(*repr.PersonName)
	if !ok {
		return nil
	}
	field := repr.NameTypeAuthor
	if name.NameType == repr.NameTypeEditor {
		field = repr.NameTypeEditor
	}
	return repr.Append(field, name)
}

var identifierSchemes = map[string]string{
	"dblp-record": repr.SchemeDBLP,
	"doi":         repr.SchemeDOI,
	"arxiv":       repr.SchemeArXiv,
}

// usesIdentifierScheme records the scheme of a resource identifier. A dblp
// record id overrides any other scheme seen first.
func usesIdentifierScheme(_ Env, _, obj *tree.Node) repr.Op {
	scheme, ok := identifierSchemes[strings.ToLower(common.SimplifyURLName(obj.Name))]
	if !ok {
		return nil
	}
	return repr.SetField{Field: "scheme", Value: scheme, Overwrite: scheme == repr.SchemeDBLP}
}

func hasIdentifier(env Env, _, obj *tree.Node) repr.Op {
	ident, ok := env.Record(obj.ID).(*repr.ResourceIdentifier)
	if !ok {
		return nil
	}
	key := ident.Qualified()
	if key == "" {
		return nil
	}
	return repr.SetField{Field: "key", Value: key, Overwrite: ident.Scheme == repr.SchemeDBLP}
}
