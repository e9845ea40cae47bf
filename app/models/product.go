package models

import "slices"

// Product is one catalogue entry. Price is in whole rupees.
type Product struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Price int      `json:"price"`
	Tags  []string `json:"tags"`
	Img   string   `json:"img"`
}

// HasTag reports whether the product carries tag exactly.
func (p Product) HasTag(tag string) bool { return slices.Contains(p.Tags, tag) }

// ProductDescription is shown in the detail modal for every product.
const ProductDescription = "Soft fabric, comfortable fit, great for daily wear or a day out. Sizes available: S, M, L."

func unsplash(photo string) string {
	return "https://images.unsplash.com/photo-" + photo + "?q=80&w=1200&auto=format&fit=crop"
}

// SampleProducts returns a fresh copy of the seed catalogue.
func SampleProducts() []Product {
	return []Product{
		{ID: "p1", Title: "Floral Summer Dress", Price: 999, Tags: []string{"Women", "New", "Casual"}, Img: unsplash("1521572163474-6864f9cf17ab")},
		{ID: "p2", Title: "Classic White Tee", Price: 499, Tags: []string{"Men", "Casual"}, Img: unsplash("1503342217505-b0a15ec3261c")},
		{ID: "p3", Title: "Lightweight Denim Jacket", Price: 1799, Tags: []string{"Women", "Jackets"}, Img: unsplash("1490481651871-ab68de25d43d")},
		{ID: "p4", Title: "Striped Casual Shirt", Price: 699, Tags: []string{"Men", "Casual"}, Img: unsplash("1530845641273-5e9b2b0d0abb")},
		{ID: "p5", Title: "Elegant Blazer", Price: 2499, Tags: []string{"Women", "Jackets"}, Img: unsplash("1541099649105-f69ad21f3246")},
		{ID: "p6", Title: "Comfort Hoodie", Price: 1199, Tags: []string{"Men", "New"}, Img: unsplash("1551854838-9f6d4a0d76d6")},
		{ID: "p7", Title: "Boho Maxi Skirt", Price: 899, Tags: []string{"Women", "Casual"}, Img: unsplash("1520975680246-1e6c9a1f3c6f")},
		{ID: "p8", Title: "Tailored Chinos", Price: 1399, Tags: []string{"Men"}, Img: unsplash("1520975919479-7f67b6b916bd")},
	}
}

// SampleImageURLs lists the seed catalogue's images, in order.
func SampleImageURLs() []string {
	products := SampleProducts()
	urls := make([]string, len(products))
	for i, p := range products {
		urls[i] = p.Img
	}
	return urls
}
