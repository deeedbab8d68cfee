package coop

import (
	"strconv"
	"strings"
)

// AllCommitteesID asks the shift grid for every committee at once.
const AllCommitteesID = 0

// Committee is a shift type as the member-services site numbers it.
type Committee struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Restricted bool   `json:"restricted"` // Marked "**" on the site: needs prior training
}

// Committees is the site's committee table in dropdown order.
var Committees = []Committee{
	{ID: AllCommitteesID, Name: "All committees"},
	{ID: 7, Name: "Carrot"},
	{ID: 2, Name: "Receiving: Lifting"},
	{ID: 5, Name: "Receiving: Stocking"},
	{ID: 110, Name: "Bathroom Cleaning Plus"},
	{ID: 4, Name: "Cart Return and Sidewalk Maintenance"},
	{ID: 1, Name: "Case Maintenance"},
	{ID: 114, Name: "Cash Drawer Counting", Restricted: true},
	{ID: 38, Name: "Cashier", Restricted: true},
	{ID: 58, Name: "Checkout"},
	{ID: 142, Name: "CHIPS Food Drive"},
	{ID: 126, Name: "Cleaning Bulk Bins"},
	{ID: 78, Name: "Cleaning"},
	{ID: 134, Name: "Enrollment Data Entry and Photo Processing", Restricted: true},
	{ID: 54, Name: "Entrance Desk"},
	{ID: 56, Name: "Flex Worker"},
	{ID: 48, Name: "Food Processing: Bulk Packaging & Stocking"},
	{ID: 146, Name: "Food Processing: Bulk Team Leader", Restricted: true},
	{ID: 94, Name: "Food Processing: Cheese & Olive Packaging"},
	{ID: 130, Name: "Food Processing: Cheese & Olive Team Leader", Restricted: true},
	{ID: 64, Name: "Front End Support", Restricted: true},
	{ID: 159, Name: "General Meeting for workslot credit"},
	{ID: 6, Name: "Inventory"},
	{ID: 50, Name: "Inventory: Data entry", Restricted: true},
	{ID: 72, Name: "Inventory: Produce"},
	{ID: 40, Name: "Morning Set-up & Equipment Cleaning", Restricted: true},
	{ID: 106, Name: "New Member Enrollment", Restricted: true},
	{ID: 62, Name: "Office"},
	{ID: 44, Name: "Receiving: Beer Stocking", Restricted: true},
	{ID: 74, Name: "Receiving: Bread Stocking"},
	{ID: 174, Name: "Receiving: Bulk Lifting"},
	{ID: 172, Name: "Receiving: Dairy Lifting"},
	{ID: 102, Name: "Receiving: Health and Beauty Support"},
	{ID: 42, Name: "Receiving: Meat Processing and Lifting"},
	{ID: 150, Name: "Receiving: Produce Lifting and Stocking"},
	{ID: 90, Name: "Receiving: Produce Processing"},
	{ID: 157, Name: "Receiving: Team Leader", Restricted: true},
	{ID: 98, Name: "Receiving: Turkey Runner"},
	{ID: 46, Name: "Receiving: Vitamins"},
	{ID: 52, Name: "Repairs"},
	{ID: 3, Name: "Scanning Invoices", Restricted: true},
	{ID: 68, Name: "Sorting and Collating Documents"},
	{ID: 169, Name: "Soup Kitchen Volunteer Appreciation Event"},
	{ID: 152, Name: "Soup Kitchen: Deep-Cleaning"},
	{ID: 86, Name: "Soup Kitchen: Food Services"},
	{ID: 165, Name: "Soup Kitchen: Guest Services"},
	{ID: 154, Name: "Soup Kitchen: Reception"},
	{ID: 171, Name: "Special Project: Data Entry"},
	{ID: 122, Name: "Voucher Processing"},
}

// Short names accepted on the command line.
var committeeAliases = map[string]int{
	"GENERAL_MEETING_WORKSLOT": 159,
	"STOCKING":                 5,
}

// LookupCommittee resolves a command-line shift type. An empty query means all
// committees; otherwise it tries a numeric ID, an alias, an exact name and
// finally the first name containing the query, all case-insensitively.
func LookupCommittee(query string) (Committee, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Committees[0], true
	}
	if id, err := strconv.Atoi(q); err == nil {
		return committeeByID(id)
	}
	if id, ok := committeeAliases[strings.ToUpper(q)]; ok {
		return committeeByID(id)
	}
	for _, c := range Committees {
		if strings.EqualFold(c.Name, q) {
			return c, true
		}
	}
	lower := strings.ToLower(q)
	for _, c := range Committees[1:] {
		if strings.Contains(strings.ToLower(c.Name), lower) {
			return c, true
		}
	}
	return Committee{}, false
}

func committeeByID(id int) (Committee, bool) {
	for _, c := range Committees {
		if c.ID == id {
			return c, true
		}
	}
	return Committee{}, false
}
