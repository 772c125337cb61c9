package capacity

import (
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
)

// CPUFrequency reports the host CPU's clock speed in MHz as processor
// capacity. The figure is read once and cached; callers fall back to
// their default capacity when the probe fails.
type CPUFrequency struct {
	once sync.Once
	mhz  float64
	err  error
}

func NewCPUFrequency() *CPUFrequency {
	return &CPUFrequency{}
}

func (c *CPUFrequency) CapacityOf(processorID string) (float64, error) {
	c.once.Do(func() {
		infos, err := cpu.Info()
		if err != nil {
			c.err = err
			return
		}
		if len(infos) == 0 || infos[0].Mhz <= 0 {
			c.err = fmt.Errorf("cpu frequency unavailable")
			return
		}
		c.mhz = infos[0].Mhz
	})

	if c.err != nil {
		return 0, c.err
	}
	return c.mhz, nil
}
