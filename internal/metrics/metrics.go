package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftnest_registrations_total",
		Help: "Number of user accounts created.",
	})

	FamiliesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftnest_families_created_total",
		Help: "Number of families created.",
	})

	ItemsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftnest_wishlist_items_created_total",
		Help: "Number of wishlist items added.",
	})

	WishlistsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftnest_wishlists_published_total",
		Help: "Number of wishlist publish calls.",
	})

	// ReservationsTotal counts reserve attempts by outcome: reserved,
	// conflict, rejected.
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftnest_reservations_total",
		Help: "Number of reservation attempts by outcome.",
	}, []string{"outcome"})
)
