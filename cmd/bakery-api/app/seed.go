package app

import (
	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/shopspring/decimal"
)

func unsplash(photo string) string {
	return "https://images.unsplash.com/" + photo + "?w=400&h=300&fit=crop"
}

// sampleCatalog is what a fresh bakery starts with when app.seed_catalog is on.
func sampleCatalog() []domain.Product {
	p := func(name, desc, price string, qty int, category, photo string) domain.Product {
		return domain.Product{
			Name:        name,
			Description: desc,
			Price:       decimal.RequireFromString(price),
			Quantity:    qty,
			Category:    category,
			ImageURL:    unsplash(photo),
		}
	}
	return []domain.Product{
		p("Chocolate Croissant", "Buttery croissant filled with rich chocolate, perfect for breakfast or dessert.", "3.50", 25, "Pastries", "photo-1555507036-ab1f4038808a"),
		p("Sourdough Bread", "Traditional sourdough bread with a crispy crust and tangy flavor.", "4.99", 15, "Bread", "photo-1586444248902-2f64eddc13df"),
		p("Blueberry Muffin", "Moist muffin loaded with fresh blueberries and topped with a sweet crumb.", "2.99", 30, "Muffins", "photo-1607958996338-0106c4dcd783"),
		p("Cinnamon Roll", "Soft, fluffy cinnamon roll with cream cheese frosting and extra cinnamon.", "3.99", 20, "Pastries", "photo-1558618666-fcd25c85cd64"),
		p("Baguette", "Classic French baguette with a crispy exterior and soft, airy interior.", "2.49", 18, "Bread", "photo-1509440159596-0249088772ff"),
		p("Chocolate Chip Cookie", "Large, chewy chocolate chip cookies made with premium dark chocolate.", "1.99", 40, "Cookies", "photo-1499636136210-6f4ee915583e"),
		p("Apple Pie", "Homemade apple pie with flaky crust and sweet-tart apple filling.", "8.99", 8, "Pies", "photo-1535920527002-b35e3f412d0f"),
		p("Cheesecake", "Creamy New York style cheesecake with a graham cracker crust.", "12.99", 6, "Cakes", "photo-1533134242443-d4fd215305ad"),
		p("Banana Bread", "Moist banana bread with walnuts and a hint of cinnamon.", "4.49", 12, "Bread", "photo-1603046891744-76e6300df9e9"),
		p("Strawberry Danish", "Flaky Danish pastry filled with fresh strawberry jam and cream.", "3.75", 16, "Pastries", "photo-1551024709-8f23befc6f87"),
	}
}
