package hamstercal

import "strings"

// Route pairs a remote calendar with the records destined for it,
// in selection order.
type Route struct {
	Calendar *Calendar
	Records  []*FactRecord
}

// Routing is the result of matching records against remote calendars.
type Routing struct {
	Routes     []*Route      // in remote calendar order; calendars with no records are omitted
	Unroutable []*FactRecord // records whose tag matched no calendar
}

// Deliveries returns the total number of (calendar, record) uploads.
func (r *Routing) Deliveries() int {
	n := 0
	for _, route := range r.Routes {
		n += len(route.Records)
	}
	return n
}

// RouteRecords matches each record's tag against calendar titles after
// uppercasing both sides. A record is delivered to every matching calendar,
// including duplicates with identical titles. Records with an empty tag
// never match.
func RouteRecords(records []*FactRecord, calendars []*Calendar) *Routing {
	routing := &Routing{}
	routes := make([]*Route, len(calendars))
	titles := make([]string, len(calendars))
	for i, cal := range calendars {
		routes[i] = &Route{Calendar: cal}
		titles[i] = strings.ToUpper(cal.Title)
	}

	for _, rec := range records {
		matched := false
		if rec.Tag != "" {
			tag := strings.ToUpper(rec.Tag)
			for i, title := range titles {
				if title == tag {
					routes[i].Records = append(routes[i].Records, rec)
					matched = true
				}
			}
		}
		if !matched {
			routing.Unroutable = append(routing.Unroutable, rec)
		}
	}

	for _, route := range routes {
		if len(route.Records) > 0 {
			routing.Routes = append(routing.Routes, route)
		}
	}
	return routing
}
