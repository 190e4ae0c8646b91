package seed

import "HeroCatalog/internal/hero"

// Builtin returns a fresh copy of the five default records.
func Builtin() []hero.Hero {
	return []hero.Hero{
		{
			ID:          "1",
			Name:        "Spider-Man",
			Alias:       "Peter Parker",
			Powers:      []string{"Wall-crawling", "Spider-sense", "Super strength", "Web-shooting"},
			Nationality: "American",
			Team:        "Avengers",
			Description: "Bitten by a radioactive spider, Peter Parker gained incredible spider-like abilities. With great power comes great responsibility, and Spider-Man protects New York City from criminals and super-villains alike.",
			Image:       "https://images.unsplash.com/photo-1601127939825-a1416676187c?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "2",
			Name:        "Thor",
			Alias:       "God of Thunder",
			Powers:      []string{"Super strength", "Weather control", "Mjolnir mastery", "Flight"},
			Nationality: "Asgardian",
			Team:        "Avengers",
			Description: "The Asgardian God of Thunder, Thor wields the mystical hammer Mjolnir and commands the power of lightning. As a founding member of the Avengers, he protects both Earth and the Nine Realms.",
			Image:       "https://images.unsplash.com/photo-1559535332-db9971090158?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "3",
			Name:        "Captain America",
			Alias:       "Steve Rogers",
			Powers:      []string{"Enhanced strength", "Enhanced speed", "Vibranium shield", "Tactical genius"},
			Nationality: "American",
			Team:        "Avengers",
			Description: "Enhanced by the Super Soldier Serum during World War II, Steve Rogers became Captain America. Armed with his indestructible vibranium shield, he leads the Avengers as a symbol of freedom and justice.",
			Image:       "https://images.unsplash.com/photo-1573405202162-52ba7a3e0377?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "4",
			Name:        "Black Widow",
			Alias:       "Natasha Romanoff",
			Powers:      []string{"Expert martial artist", "Master spy", "Weapons expert", "Enhanced agility"},
			Nationality: "Russian",
			Team:        "Avengers",
			Description: "A former Russian spy turned S.H.I.E.L.D. agent, Natasha Romanoff is a master assassin and martial artist. Despite having no superpowers, she more than holds her own alongside gods and super soldiers.",
			Image:       "https://images.unsplash.com/photo-1722264485359-10b77086900d?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "5",
			Name:        "Iron Man",
			Alias:       "Tony Stark",
			Powers:      []string{"Genius intellect", "Advanced technology", "Powered armor", "Flight"},
			Nationality: "American",
			Team:        "Avengers",
			Description: "Billionaire genius Tony Stark built a powered suit of armor to escape captivity and became Iron Man. Using his wealth and intellect, he continues to upgrade his technology to protect the world.",
			Image:       "https://images.unsplash.com/photo-1650610276333-cb64e6724519?fit=max&fm=jpg&q=80&w=1080",
		},
	}
}
