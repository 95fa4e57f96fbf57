package distributed

import (
	"fmt"
	"sync"

	"github.com/00mjk/qibo/qc/simulator/piece"
)

// Dispatcher runs one WaveGates wave by spawning a worker goroutine per
// physical device name that has work, not per piece: each worker walks
// its device's assigned piece ids sequentially, applying that piece's
// reduced gates against its amplitude buffer, so a single device is
// never oversubscribed with concurrent piece work. Grounded on
// TensorflowDistributedCircuit._joblib_execute's per-device `ids, device`
// job loop and qc/simulator/parstat_runner.go's static worker-pool idiom:
// a WaitGroup join, first-error-wins over a buffered error channel,
// workers always joined even on error.
type Dispatcher struct{}

// RunWave dispatches a WaveGates wave: one goroutine per device name in
// devices.Order, each applying its assigned piece ids' reduced gate
// lists in order.
func (Dispatcher) RunWave(w Wave, pieces []Piece, devices *DeviceMap) error {
	if w.Kind != WaveGates {
		return fmt.Errorf("distributed: RunWave called with non-gate wave kind %d", w.Kind)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(devices.Order))

	for _, name := range devices.Order {
		ids := devices.IDs[name]
		hasWork := false
		for _, i := range ids {
			if len(w.Gates[i]) > 0 {
				hasWork = true
				break
			}
		}
		if !hasWork {
			continue
		}

		wg.Add(1)
		go func(device string, ids []int) {
			defer wg.Done()
			leave := WithDevice(device)
			defer leave()

			for _, i := range ids {
				amps := pieces[i].Amplitudes
				for _, g := range w.Gates[i] {
					if err := piece.Apply(amps, g.Name(), g.Targets(), g.Controls()); err != nil {
						errCh <- fmt.Errorf("device %s piece %d: %w", device, i, err)
						return
					}
				}
			}
		}(name, ids)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
