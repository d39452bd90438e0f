package main

import (
	"context"

	"crowdfund-scraper/cmd/crowdfund/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
