package store

import "github.com/sirupsen/logrus"

// Referencing returns h together with every live element whose boundary contains h,
// highest dimension first
func (c *Collection) Referencing(h Handle) ([]Handle, error) {
	if _, err := c.Dereference(h); err != nil {
		return nil, err
	}
	return c.referencing(map[Handle]bool{h: true}), nil
}

func (c *Collection) referencing(targets map[Handle]bool) []Handle {
	var (
		out    []Handle
		minDim = 4
	)
	for h := range targets {
		minDim = min(minDim, h.Kind.Dimension())
	}
	kinds := c.Kinds()
	for i := len(kinds) - 1; i >= 0; i-- {
		k := kinds[i]
		for h, el := range c.containers[k].All() {
			if targets[h] {
				out = append(out, h)
				continue
			}
			if k.Dimension() <= minDim {
				continue
			}
			for t := range targets {
				if t.Kind.Dimension() < el.Dimension() && el.References(t) {
					out = append(out, h)
					break
				}
			}
		}
	}
	return out
}

/*
Erase removes the given elements from the mesh along with every element that references
any of them, so no surviving element is left pointing at an erased one. Boundary elements
of the erased set are kept. Attached views drop the erased handles and OnErase listeners
are told which handles went away. Erased slots are never reused.
*/
func (c *Collection) Erase(handles ...Handle) error {
	targets := make(map[Handle]bool, len(handles))
	for _, h := range handles {
		if _, err := c.Dereference(h); err != nil {
			return err
		}
		targets[h] = true
	}
	if len(targets) == 0 {
		return nil
	}
	erased := c.referencing(targets)
	drop := make(map[Handle]bool, len(erased))
	for _, h := range erased {
		c.containers[h.Kind].erase(h)
		drop[h] = true
	}
	c.version++
	for v := range c.views {
		v.removeSet(drop)
	}
	for _, fn := range c.onErase {
		if fn != nil {
			fn(erased)
		}
	}
	c.log.WithFields(logrus.Fields{
		"requested": len(targets),
		"erased":    len(erased),
	}).Info("erased elements")
	return nil
}
