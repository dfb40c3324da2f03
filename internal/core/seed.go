package core

// seedProducts builds the example catalog committed when persistent storage
// is empty. The first three categories are referenced positionally:
// products 1-4 belong to the first, 5-8 to the second, 9-12 to the third.
func seedProducts(categories []Category) []Product {
	if len(categories) < 3 {
		return nil
	}
	first, second, third := categories[0], categories[1], categories[2]
	return []Product{
		{ID: 1, Name: "iPhone 15 Pro", Price: 89990, Category: first, Stock: 0, Rating: 4.8, Description: "Apple smartphone"},
		{ID: 2, Name: "Samsung Galaxy S24", Price: 74990, Category: first, Stock: 30, Rating: 4.7, Description: "Android smartphone"},
		{ID: 3, Name: "MacBook Air M2", Price: 124990, Category: first, Stock: 15, Rating: 4.9, Description: "Apple laptop"},
		{ID: 4, Name: "Sony WH-1000XM5", Price: 24990, Category: first, Stock: 40, Rating: 4.6, Description: "Wireless headphones"},
		{ID: 5, Name: "Dyson V15 Detect", Price: 54990, Category: second, Stock: 20, Rating: 4.7, Description: "Cordless vacuum cleaner"},
		{ID: 6, Name: "Philips Airfryer XXL", Price: 18990, Category: second, Stock: 35, Rating: 4.5, Description: ""},
		{ID: 7, Name: "LG InstaView Door-in-Door", Price: 89990, Category: second, Stock: 8, Rating: 4.4, Description: "Refrigerator"},
		{ID: 8, Name: "Bosch Serie 6 WAU28T90BY", Price: 45990, Category: second, Stock: 12, Rating: 4.3, Description: "Washing machine"},
		{ID: 9, Name: "Nike Air Max 270", Price: 12990, Category: third, Stock: 50, Rating: 4.4, Description: "Sneakers"},
		{ID: 10, Name: "Levi's 501 Original", Price: 7990, Category: third, Stock: 75, Rating: 4.6, Description: "Classic jeans"},
		{ID: 11, Name: "Uniqlo Heattech", Price: 1990, Category: third, Stock: 100, Rating: 4.2, Description: "Thermal underwear"},
		{ID: 12, Name: "Zara Wool Coat", Price: 8990, Category: third, Stock: 25, Rating: 4.3, Description: "Wool coat"},
	}
}
