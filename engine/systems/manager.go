package systems

type SystemManager struct {
	CameraSystem   *CameraSystem
	JobSystem      *JobSystem
	ProgressSystem *ProgressSystem
}

type SystemManagerConfig struct {
	Camera        CameraSystemConfig
	JobWorkers    int
	JobQueueSize  int
	ExpectedLoads int
}

func NewSystemManager(config *SystemManagerConfig, overlay OverlayController) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}

	cs, err := NewCameraSystem(&config.Camera)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	ps, err := NewProgressSystem(config.ExpectedLoads, overlay)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	return &SystemManager{
		CameraSystem:   cs,
		JobSystem:      js,
		ProgressSystem: ps,
	}, nil
}

func (sm *SystemManager) OnResize(width, height uint32) {
	sm.CameraSystem.OnResize(width, height)
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
