package hunger

import "sort"

// Named pools of filler tributes used to pad an incomplete roster.
var defaultPools = map[string][]string{
	"hungergames": {
		"Aurelius", "Cascade", "Cecelia", "Dax",
		"Electra", "Fennel", "Garnet", "Hale",
		"Ivory", "Jute", "Koral", "Lysander",
		"Maple", "Niko", "Octavia", "Perch",
		"Quill", "Rook", "Saffron", "Tilden",
		"Umber", "Vesta", "Wren", "Zephyr",
	},
	"mythology": {
		"Achilles", "Andromeda", "Atalanta", "Castor",
		"Circe", "Daphne", "Endymion", "Hector",
		"Icarus", "Iris", "Jason", "Leda",
		"Medea", "Nestor", "Orion", "Pandora",
		"Perseus", "Phaedra", "Pollux", "Selene",
		"Theseus", "Thetis", "Triton", "Xanthe",
	},
}

// DefaultPool returns a copy of the named candidate pool, or
// INVALID_GROUP if no pool is registered under that name. Callers
// receiving the error are expected to present PoolNames to the user.
func DefaultPool(name string) ([]string, error) {
	pool, ok := defaultPools[name]
	if !ok {
		return nil, ErrInvalidGroup
	}
	return append([]string(nil), pool...), nil
}

// PoolNames lists the registered pool names in sorted order.
func PoolNames() []string {
	names := make([]string, 0, len(defaultPools))
	for name := range defaultPools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
