package cartpool

// Registry is the configured universe of carts: the MaNGA pool, the APOGEE
// pool, and the subset of carts marked offline for this run. It is read-only
// for the duration of a run.
type Registry struct {
	manga      []int
	apogee     []int
	offline    []int
	offlineSet map[int]struct{}
}

// New builds a registry from the configured cart lists. Slices are copied so
// later mutation of the inputs cannot leak into a running allocation.
func New(manga, apogee, offline []int) *Registry {
	r := &Registry{
		manga:      append([]int(nil), manga...),
		apogee:     append([]int(nil), apogee...),
		offline:    append([]int(nil), offline...),
		offlineSet: make(map[int]struct{}, len(offline)),
	}
	for _, cart := range offline {
		r.offlineSet[cart] = struct{}{}
	}
	return r
}

// MangaCarts returns the full MaNGA pool in configured order, including
// offline carts.
func (r *Registry) MangaCarts() []int {
	return append([]int(nil), r.manga...)
}

// ApogeeCarts returns the APOGEE pool in configured order.
func (r *Registry) ApogeeCarts() []int {
	return append([]int(nil), r.apogee...)
}

// AvailableMangaCarts returns the MaNGA pool minus offline carts, preserving
// configured order. This is the cart set the allocator works with.
func (r *Registry) AvailableMangaCarts() []int {
	carts := make([]int, 0, len(r.manga))
	for _, cart := range r.manga {
		if !r.IsOffline(cart) {
			carts = append(carts, cart)
		}
	}
	return carts
}

// OfflineCarts returns the offline carts in configured order.
func (r *Registry) OfflineCarts() []int {
	return append([]int(nil), r.offline...)
}

// IsOffline reports whether a cart is unusable this run.
func (r *Registry) IsOffline(cart int) bool {
	_, ok := r.offlineSet[cart]
	return ok
}
