package web

import (
	"strconv"

	"datamapper/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func page(title string, body ...Node) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Data Mapper")),
			Link(Rel("icon"), Href("data:,")),
		),
		Body(
			Header(A(Href("/users"), Strong(Text("Users")))),
			Main(H1(Text(title)), Group(body)),
		),
	)
}

func usersPage(title string, users []*domain.User, nextHref string) Node {
	if len(users) == 0 {
		return page(title, P(Class("blankslate"), Text("No users match.")))
	}
	rows := make([]Node, 0, len(users))
	for _, u := range users {
		rows = append(rows, Tr(
			Td(A(Href("/users/"+domain.FormatID(u.ID())), Text(domain.FormatID(u.ID())))),
			Td(Text(u.DisplayName())),
			Td(Text(u.Email)),
			Td(Text(strconv.Itoa(u.Age))),
			Td(Text(activeLabel(u.Active))),
		))
	}
	body := []Node{Table(
		THead(Tr(Th(Text("ID")), Th(Text("Name")), Th(Text("Email")), Th(Text("Age")), Th(Text("Status")))),
		TBody(rows...),
	)}
	if nextHref != "" {
		body = append(body, Nav(A(Href(nextHref), Rel("next"), Text("Next page"))))
	}
	return page(title, body...)
}

func userPage(u *domain.User) Node {
	nickname := "-"
	if u.Nickname != nil && *u.Nickname != "" {
		nickname = *u.Nickname
	}
	return page(u.Name, Dl(
		Dt(Text("Email")), Dd(Text(u.Email)),
		Dt(Text("Nickname")), Dd(Text(nickname)),
		Dt(Text("Age")), Dd(Text(strconv.Itoa(u.Age))),
		Dt(Text("Status")), Dd(Text(activeLabel(u.Active))),
		Dt(Text("Created")), Dd(Text(u.CreatedAt.UTC().Format("2006-01-02 15:04:05"))),
	))
}

func errorPage(title, message string) Node {
	return page(title, P(Class("flash flash-error"), Text(message)))
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
