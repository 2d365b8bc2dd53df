// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Columns lists the output columns in their fixed order.
var Columns = []string{
	"id",
	"title",
	"startDate",
	"endDate",
	"fundingAmount",
	"researchers",
	"fundingOrgName",
	"shortAbstract",
	"fields",
	"link",
	"linkout",
}

// Row is one normalized grant in the flat output schema. Absent source values
// stay absent; Researchers and Fields are always present (possibly empty).
type Row struct {
	ID             string `json:"id" yaml:"id"`
	Title          Scalar `json:"title" yaml:"title"`
	StartDate      Scalar `json:"startDate" yaml:"startDate"`
	EndDate        Scalar `json:"endDate" yaml:"endDate"`
	FundingAmount  Scalar `json:"fundingAmount" yaml:"fundingAmount"`
	Researchers    string `json:"researchers" yaml:"researchers"`
	FundingOrgName Scalar `json:"fundingOrgName" yaml:"fundingOrgName"`
	ShortAbstract  Scalar `json:"shortAbstract" yaml:"shortAbstract"`
	Fields         string `json:"fields" yaml:"fields"`
	Link           Scalar `json:"link" yaml:"link"`
	Linkout        Scalar `json:"linkout" yaml:"linkout"`
}

// Values returns the row's cells in Columns order. Absent values become
// empty strings.
func (r Row) Values() []string {
	return []string{
		r.ID,
		r.Title.String(),
		r.StartDate.String(),
		r.EndDate.String(),
		r.FundingAmount.String(),
		r.Researchers,
		r.FundingOrgName.String(),
		r.ShortAbstract.String(),
		r.Fields,
		r.Link.String(),
		r.Linkout.String(),
	}
}
