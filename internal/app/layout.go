package app

import "dao-dashboard/internal/chain"

type MenuItem struct {
	Label string
	Path  string
}

// Layout is the navigation and the header around every page.
type Layout struct {
	Menu      []MenuItem
	ChainName string
	Account   string
	Connected bool
}

var menu = []MenuItem{
	{Label: "DAO DAO", Path: "/"},
	{Label: "Home", Path: "/"},
	{Label: "Create", Path: "/create-dao"},
}

func (a *App) Layout(session chain.Session) Layout {
	items := make([]MenuItem, len(menu))
	copy(items, menu)
	return Layout{
		Menu:      items,
		ChainName: a.provider.ChainName,
		Account:   session.Address,
		Connected: session.Connected(),
	}
}
