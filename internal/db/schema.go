package db

import _ "embed"

//go:embed schema.sql
var Schema string

// Categories is the fixed taxonomy seeded by Schema, in seed order.
var Categories = []string{
	"American History",
	"Art",
	"Business/Economics",
	"Classical Music",
	"Film",
	"Food/Drink",
	"Games/Sport",
	"Geography",
	"Language",
	"Lifestyle",
	"Literature",
	"Math",
	"Pop Music",
	"Science",
	"Television",
	"Theatre",
	"World History",
	"Miscellaneous",
}

// QuestionsPerDay is how many questions make up one match day.
const QuestionsPerDay = 6
