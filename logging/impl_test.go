package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestSublogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("spacecraft").Sublogger("panel")
	sub.Infow("registered states", "count", 2)

	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "spacecraft.panel")
	test.That(t, entries[0].Message, test.ShouldEqual, "registered states")
	test.That(t, entries[0].ContextMap()["count"], test.ShouldEqual, int64(2))
}

func TestSetLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("body")
	test.That(t, sub.GetLevel(), test.ShouldEqual, DEBUG)

	// subloggers share the level of their parent
	logger.SetLevel(WARN)
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)
	sub.Debug("dropped")
	sub.Info("dropped")
	sub.Warn("kept")
	sub.Error("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), test.ShouldEqual, 1)

	sub.SetLevel(DEBUG)
	logger.Debugf("step %d", 3)
	test.That(t, logs.FilterMessage("step 3").Len(), test.ShouldEqual, 1)
}

func TestBlankLogger(t *testing.T) {
	logger := NewBlankLogger("quiet")
	logger.Errorw("nothing happens")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, logger.Desugar(), test.ShouldNotBeNil)
}

func TestGlobal(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger := NewBlankLogger("global")
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
}
