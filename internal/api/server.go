package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	MenuHandler  *handler.MenuHandler
	CartHandler  *handler.CartHandler
	OrderHandler *handler.OrderHandler
}

func NewServer(
	menuHandler *handler.MenuHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
) *Server {
	return &Server{
		MenuHandler:  menuHandler,
		CartHandler:  cartHandler,
		OrderHandler: orderHandler,
	}
}
