// Package issn extracts records from ISSN assignment certificates.
package issn

import "strconv"

// Field names, in the order they appear on the certificate.
const (
	FieldTitle            = "title"
	FieldAbbreviatedTitle = "abbreviated_title"
	FieldPublisher        = "publisher"
	FieldFrequency        = "frequency"
	FieldMedium           = "medium"
	FieldAssignmentDate   = "assignment_date"
)

// ChecksumStatus distinguishes a missing identifier from one that failed the
// check digit test.
type ChecksumStatus string

const (
	ChecksumAbsent  ChecksumStatus = "absent"
	ChecksumValid   ChecksumStatus = "valid"
	ChecksumInvalid ChecksumStatus = "invalid"
)

// Record is the extraction result for one certificate.
type Record struct {
	File             string         `json:"file"`
	ISSN             string         `json:"issn,omitempty"`
	ISSNValid        *bool          `json:"issn_valid,omitempty"` // nil only for error records
	Checksum         ChecksumStatus `json:"checksum,omitempty"`
	Title            string         `json:"title,omitempty"`
	AbbreviatedTitle string         `json:"abbreviated_title,omitempty"`
	Publisher        string         `json:"publisher,omitempty"`
	Frequency        string         `json:"frequency,omitempty"`
	Medium           string         `json:"medium,omitempty"`
	AssignmentDate   string         `json:"assignment_date,omitempty"`
	CertificateDate  string         `json:"certificate_date,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// ErrorRecord is the record reported for a document that could not be read.
func ErrorRecord(file string, err error) Record {
	return Record{File: file, Error: err.Error()}
}

// Failed reports whether the record carries a document-level error.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Columns is the spreadsheet header, in output order.
var Columns = []string{
	"archivo",
	"ISSN asignado",
	"issn_valido",
	"checksum",
	"Título",
	"Título abreviado",
	"Editor",
	"Periodicidad",
	"Soporte",
	"Fecha de asignación",
	"Fecha del certificado",
	"error",
}

// Row returns the record's values in Columns order. The validity flag is left
// blank for error records.
func (r Record) Row() []string {
	valid := ""
	if r.ISSNValid != nil {
		valid = strconv.FormatBool(*r.ISSNValid)
	}
	return []string{
		r.File,
		r.ISSN,
		valid,
		string(r.Checksum),
		r.Title,
		r.AbbreviatedTitle,
		r.Publisher,
		r.Frequency,
		r.Medium,
		r.AssignmentDate,
		r.CertificateDate,
		r.Error,
	}
}
