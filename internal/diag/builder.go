package diag

import (
	"escheck/internal/ecma"
	"escheck/internal/source"
)

func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d *Diagnostic) WithVersion(v ecma.Version, construct string) *Diagnostic {
	d.Version = v
	d.Construct = construct
	return d
}

func (d *Diagnostic) WithOrigin(o *Origin) *Diagnostic {
	d.Origin = o
	return d
}
