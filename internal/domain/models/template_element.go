package models

// TemplateElement is a UI building block referenced by checklist operations.
// It carries no lifecycle capabilities: deleting one is a physical delete.
type TemplateElement struct {
	Base

	Name     string
	ElemType int
}
