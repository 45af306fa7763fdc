package model

// View is the outbound representation of a record: payload fields spliced
// into the top-level object, with the fixed attributes written last so they
// win any collision with a payload key.
type View = map[string]any

// View renders the record for API responses. Type is omitted; ViewWithType
// includes it (used by the single-record endpoint).
func (r *Record) View() View {
	v := make(View, len(r.Payload)+4)
	for k, val := range r.Payload {
		v[k] = val
	}
	v["id"] = r.ID
	v["name"] = r.Name
	v["createdAt"] = r.CreatedAt
	v["updatedAt"] = r.UpdatedAt
	return v
}

// ViewWithType renders the record including its type discriminator.
func (r *Record) ViewWithType() View {
	v := r.View()
	v["type"] = r.Type
	return v
}
