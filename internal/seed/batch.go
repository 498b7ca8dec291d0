package seed

import "time"

// Entry describes one example submission in the build-time seed batch. Age is
// subtracted from the seeding wall clock, so batch order runs from the oldest
// entry to the most recent one.
type Entry struct {
	Name    string
	Email   string
	Subject string
	Message string
	Age     time.Duration
}

var defaultSeedBatch = []Entry{
	{
		Name:    "Priya Raman",
		Email:   "priya.raman@example.com",
		Subject: "Freelance project inquiry",
		Message: "Hi! I came across your portfolio and would love to discuss a small web project for my studio.",
		Age:     96 * time.Hour,
	},
	{
		Name:    "Daniel Okafor",
		Email:   "daniel.okafor@example.com",
		Subject: "Speaking opportunity",
		Message: "We are organizing a local developer meetup next month and your weather dashboard demo would be a great talk.",
		Age:     72 * time.Hour,
	},
	{
		Name:    "Mei Lin",
		Email:   "mei.lin@example.com",
		Subject: "Question about your recipe app",
		Message: "Which API do you use for the recipe search page? I am building something similar for a class project.",
		Age:     48 * time.Hour,
	},
	{
		Name:    "Tomás Herrera",
		Email:   "tomas.herrera@example.com",
		Subject: "Job opportunity",
		Message: "Our team is hiring a backend developer and your GitHub activity caught our attention. Are you open to a chat?",
		Age:     18 * time.Hour,
	},
	{
		Name:    "Sarah Whitfield",
		Email:   "sarah.whitfield@example.com",
		Subject: "Great portfolio",
		Message: "Just wanted to say the site looks fantastic. The contact form worked perfectly, clearly!",
		Age:     3 * time.Hour,
	},
}

// DefaultBatchSize reports the size of the build-time seed batch.
func DefaultBatchSize() int {
	return len(defaultSeedBatch)
}
