package models

// CartLine is one "add to cart" action. Qty is always 1 when stored;
// repeated adds append more lines.
type CartLine struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
	Img   string `json:"img"`
	Qty   int    `json:"qty"`
}

// LineFor builds the unit line for p.
func LineFor(p Product) CartLine {
	return CartLine{ID: p.ID, Title: p.Title, Price: p.Price, Img: p.Img, Qty: 1}
}

// GroupedLine is every line of one product folded together.
type GroupedLine struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Img      string `json:"img"`
	Qty      int    `json:"qty"`
	Subtotal int    `json:"subtotal"`
}

// Group folds lines by product id, keeping the order in which each id
// first appeared. Title, price and image come from that first line.
func Group(lines []CartLine) []GroupedLine {
	index := make(map[string]int, len(lines))
	out := make([]GroupedLine, 0, len(lines))

	for _, l := range lines {
		qty := max(l.Qty, 1)
		if i, ok := index[l.ID]; ok {
			out[i].Qty += qty
			out[i].Subtotal = out[i].Price * out[i].Qty
			continue
		}
		index[l.ID] = len(out)
		out = append(out, GroupedLine{
			ID:       l.ID,
			Title:    l.Title,
			Price:    l.Price,
			Img:      l.Img,
			Qty:      qty,
			Subtotal: l.Price * qty,
		})
	}
	return out
}

// Total sums price*qty over grouped lines.
func Total(lines []GroupedLine) int {
	total := 0
	for _, l := range lines {
		total += l.Price * l.Qty
	}
	return total
}

// CartView is what the drawer and GET /api/cart show.
type CartView struct {
	Lines []GroupedLine `json:"lines"`
	Total int           `json:"total"`
	Count int           `json:"count"`
}
