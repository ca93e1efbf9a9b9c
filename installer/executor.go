package installer

// runSteps executes steps in order and returns the first error of a
// required step. Failures of optional steps are reported through
// ShowWarning and do not stop the sequence.
func (in *Installer) runSteps(steps []Step) error {
	log := in.log
	for _, step := range steps {
		log.Step("Starting: %s", step.Name)

		result := step.Action()

		if result.Err != nil {
			if step.Optional {
				in.ShowWarning(step.Name + " failed: " + result.Err.Error())
				continue
			}
			log.Error("Step '%s' failed: %v", step.Name, result.Err)
			return result.Err
		}

		switch {
		case result.Skip && result.Info != "":
			log.Info("Step '%s' skipped: %s", step.Name, result.Info)
		case result.Skip:
			log.Info("Step '%s' skipped", step.Name)
		case result.Info != "":
			log.Info("Step '%s' completed: %s", step.Name, result.Info)
		default:
			log.Info("Step '%s' completed", step.Name)
		}
	}
	return nil
}
