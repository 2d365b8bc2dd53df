// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"io"

	"github.com/pdiddy/grant-harvester/pkg/types"
)

// researcherColumns is the header of the researcher table.
var researcherColumns = []string{"grant_id", "first_name", "last_name"}

// WriteCSV writes a header and one record per row in types.Columns order.
// Absent values are written as empty cells.
func WriteCSV(w io.Writer, rows []types.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResearchersCSV writes the researcher table.
func WriteResearchersCSV(w io.Writer, researchers []types.Researcher) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(researcherColumns); err != nil {
		return err
	}
	for _, r := range researchers {
		if err := cw.Write([]string{r.GrantID, r.FirstName, r.LastName}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
