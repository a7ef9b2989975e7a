package core

// Registry holds the three participant namespaces. Names are unique within a
// namespace; a buyer and a seller may share a name.
// Registry is not safe for concurrent use; House serialises access to it.
type Registry struct {
	buyers      map[string]Buyer
	sellers     map[string]Seller
	auctioneers map[string]Auctioneer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		buyers:      make(map[string]Buyer),
		sellers:     make(map[string]Seller),
		auctioneers: make(map[string]Auctioneer),
	}
}

// RegisterBuyer inserts a buyer, failing with ErrDuplicateName if the name is taken.
func (r *Registry) RegisterBuyer(name string, buyer Buyer) error {
	if _, exists := r.buyers[name]; exists {
		return ErrDuplicateName
	}
	r.buyers[name] = buyer
	return nil
}

// RegisterSeller inserts a seller, failing with ErrDuplicateName if the name is taken.
func (r *Registry) RegisterSeller(name string, seller Seller) error {
	if _, exists := r.sellers[name]; exists {
		return ErrDuplicateName
	}
	r.sellers[name] = seller
	return nil
}

// EnsureAuctioneer registers the auctioneer on first use. Later calls keep the
// original address.
func (r *Registry) EnsureAuctioneer(name, address string) Auctioneer {
	if existing, ok := r.auctioneers[name]; ok {
		return existing
	}
	a := Auctioneer{Address: address}
	r.auctioneers[name] = a
	return a
}

func (r *Registry) Buyer(name string) (Buyer, bool) {
	b, ok := r.buyers[name]
	return b, ok
}

func (r *Registry) Seller(name string) (Seller, bool) {
	s, ok := r.sellers[name]
	return s, ok
}

func (r *Registry) Auctioneer(name string) (Auctioneer, bool) {
	a, ok := r.auctioneers[name]
	return a, ok
}
