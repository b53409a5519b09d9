package wheel

// Filter returns the names of items every active member can play, in
// catalogue order. Capacity depends only on how many members are active,
// not which ones. A nil party has no active members.
func Filter(cat *Catalogue, party *Party, includePending bool) []string {
	if cat == nil {
		return nil
	}
	var active []Member
	if party != nil {
		active = make([]Member, 0, party.ActiveCount())
		for _, idx := range party.ActiveIndices() {
			if idx < len(cat.Members) {
				active = append(active, cat.Members[idx])
			}
		}
	}

	eligible := make([]string, 0, len(cat.Items))
	for _, item := range cat.Items {
		if !fitsCapacity(item, len(active)) {
			continue
		}
		if playableByAll(item, active, includePending) {
			eligible = append(eligible, item.Name)
		}
	}
	return eligible
}

func fitsCapacity(item Item, activeCount int) bool {
	return item.Capacity == 0 || activeCount <= item.Capacity
}

func playableByAll(item Item, active []Member, includePending bool) bool {
	for _, m := range active {
		switch item.StatusFor(m) {
		case StatusYes:
			continue
		case StatusDownload:
			if includePending {
				continue
			}
			return false
		default:
			return false
		}
	}
	return true
}
