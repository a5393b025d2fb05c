package lmrt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Category is a routing entry category.
type Category uint8

const (
	CategoryAID Category = iota
	CategoryAPDU
	CategoryProtocol
	CategoryTechnology
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryAID:
		return "AID"
	case CategoryAPDU:
		return "APDU"
	case CategoryProtocol:
		return "PROTOCOL"
	case CategoryTechnology:
		return "TECHNOLOGY"
	default:
		return "UNKNOWN"
	}
}

// Dirty returns the dirty flag of the category.
func (c Category) Dirty() DirtyFlags {
	switch c {
	case CategoryAID:
		return DirtyAID
	case CategoryAPDU:
		return DirtyAPDU
	case CategoryProtocol:
		return DirtyProto
	case CategoryTechnology:
		return DirtyTech
	default:
		return 0
	}
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(s) {
	case "AID":
		return CategoryAID, nil
	case "APDU", "PATTERN":
		return CategoryAPDU, nil
	case "PROTOCOL", "PROTO":
		return CategoryProtocol, nil
	case "TECHNOLOGY", "TECH":
		return CategoryTechnology, nil
	}
	return 0, fmt.Errorf("unknown routing category %q", s)
}

// RoutingOrderPolicy is the order in which categories are serialized.
// Within a category, every Active EE comes first, then the device host.
type RoutingOrderPolicy []Category

// DefaultRoutingOrder puts the most specific rules first.
var DefaultRoutingOrder = RoutingOrderPolicy{
	CategoryAID,
	CategoryAPDU,
	CategoryProtocol,
	CategoryTechnology,
}

var errBadOrder = errors.New("routing order must list each category exactly once")

// Validate checks that the policy is a permutation of all categories.
func (p RoutingOrderPolicy) Validate() error {
	if len(p) != len(DefaultRoutingOrder) {
		return errBadOrder
	}
	var seen [4]bool
	for _, c := range p {
		if int(c) >= len(seen) || seen[c] {
			return errBadOrder
		}
		seen[c] = true
	}
	return nil
}

// ParseRoutingOrder parses a list of category names.
func ParseRoutingOrder(names []string) (RoutingOrderPolicy, error) {
	p := make(RoutingOrderPolicy, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// String returns the categories joined with '>'.
func (p RoutingOrderPolicy) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, ">")
}

// Capabilities are the controller and platform features the builder and
// accountant depend on. They are resolved once at startup.
type Capabilities struct {
	Screen ScreenStateSupport

	// ISO7816 enables the proprietary ISO7816 protocol entry.
	ISO7816 bool

	// RouteBlockControl folds the route-block qualifier into ISO-DEP,
	// ISO7816 and AID tags.
	RouteBlockControl bool

	// ProvisionMode routes the implicit NFC-DEP entry with screen-on-lock.
	ProvisionMode bool

	Order RoutingOrderPolicy
}

// DefaultCapabilities returns NCI 2.0 capabilities with the default order.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Screen: ScreenStateFull,
		Order:  DefaultRoutingOrder,
	}
}

// Protocols returns the routable protocols for these capabilities.
func (c Capabilities) Protocols() []wire.Protocol {
	if c.ISO7816 {
		return wire.Protocols
	}
	return wire.Protocols[:len(wire.Protocols)-1]
}

func (c Capabilities) blockQualifier() uint8 {
	if c.RouteBlockControl {
		return wire.QualifierBlockRoute
	}
	return 0
}
