package shopping

// Stock is a quantity of an ingredient already at home.
type Stock struct {
	Name     string
	Quantity float64
	Unit     string
}

// Subtract returns a copy of list with stock taken off. Stock matches a line
// on the same identity Aggregate uses; lines that are fully covered are
// dropped, and so are categories left empty.
func Subtract(list CategorizedList, stock []Stock) CategorizedList {
	available := make(map[itemKey]float64, len(stock))
	for _, s := range stock {
		if s.Quantity > 0 {
			available[keyOf(s.Name, s.Unit)] += s.Quantity
		}
	}

	out := make(CategorizedList, len(list))
	for category, items := range list {
		for _, item := range items {
			k := keyOf(item.Name, item.Unit)
			have := available[k]
			if have >= item.Quantity {
				available[k] = have - item.Quantity
				continue
			}

			remaining := item
			remaining.Quantity = item.Quantity - have
			remaining.Recipes = append([]string(nil), item.Recipes...)
			available[k] = 0
			out[category] = append(out[category], remaining)
		}
	}
	return out
}
