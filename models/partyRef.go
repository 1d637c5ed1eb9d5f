package models

import "fmt"

// PartyRef points a document at exactly one party: a customer or a supplier, never both.
// It is stored as the (party_role, party_id) column pair.
type PartyRef struct {
	Role  PartyRole `gorm:"column:party_role;size:10;not null" json:"role"`
	RefId int       `gorm:"column:party_id;not null;index" json:"id"`
}

func CustomerRef(id int) PartyRef { return PartyRef{Role: PartyRoleCustomer, RefId: id} }

func SupplierRef(id int) PartyRef { return PartyRef{Role: PartyRoleSupplier, RefId: id} }

func (p PartyRef) IsCustomer() bool { return p.Role == PartyRoleCustomer }

func (p PartyRef) IsSupplier() bool { return p.Role == PartyRoleSupplier }

func (p PartyRef) String() string { return fmt.Sprintf("%s:%d", p.Role, p.RefId) }
