package debug_utils

type Colorb [4]uint8

func (c Colorb) R() uint8 {
	return c[0]
}

func (c Colorb) G() uint8 {
	return c[1]
}

func (c Colorb) B() uint8 {
	return c[2]
}

func (c Colorb) A() uint8 {
	return c[3]
}

func (c Colorb) Int() uint32 {
	return uint32(c.R()) | (uint32(c.G()) << 8) | (uint32(c.B()) << 16) | (uint32(c.A()) << 24)
}

func (c *Colorb) FromInt(col uint32) {
	c[0] = uint8(col & 0xff)
	c[1] = uint8((col >> 8) & 0xff)
	c[2] = uint8((col >> 16) & 0xff)
	c[3] = uint8((col >> 24) & 0xff)
}

// Float returns the rgb components in [0,1].
func (c Colorb) Float() (r, g, b float64) {
	return float64(c.R()) / 255, float64(c.G()) / 255, float64(c.B()) / 255
}

func RGBA[T int | uint8](r, g, b, a T) Colorb {
	return Colorb{uint8(r), uint8(g), uint8(b), uint8(a)}
}

func bit(a, b int) int {
	return (a & (1 << b)) >> b
}

// RegionColor spreads the low six bits of the region id over the color
// channels so neighboring ids get distinct colors. The null region is black.
func RegionColor(region int) Colorb {
	if region == 0 {
		return RGBA(0, 0, 0, 255)
	}
	r := bit(region, 1) + bit(region, 3)*2 + 1
	g := bit(region, 2) + bit(region, 4)*2 + 1
	b := bit(region, 0) + bit(region, 5)*2 + 1
	return RGBA(r*63, g*63, b*63, 255)
}
