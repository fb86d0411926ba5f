/*
Package logger provides logging functionality to a lifeline app by defining the required behavior in [Logger]
and providing an implementation of it with [LifelineLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
LogLevel is the type to use to represent those levels.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, [LifelineLogger] accepts a [LogLevel],
and if initialized with [LogLevelWarn],
only [*LifelineLogger.Warn], [*LifelineLogger.Error], and [*LifelineLogger.Fatal] produce messages.

# LifelineLogger

The [LifelineLogger] provides all the logging functionality needed for a lifeline app.
It is the implementation of [Logger] returned by the [NewLogger] function.

Log messages emitted by [LifelineLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2026/02/12 09:41:07 [INFO] console/console.go:171 'account feed event' log_context: "{"account":{"userId":"auth0|61f"}}"

The file, line number, and parent directory of where a [LifelineLogger] comprise the call site.
The message is the actual string passed into the [LifelineLogger] method.
Lastly, the log context is a JSON-encoded [*LogContext].
The last component allows for including additional data inessential to the message proper,
but provides a fuller picture of the application state at the time of logging.

# SkipLogger

Sometimes, especially with internal packages, the file and line number in a log needs to be configurable.
[SkipLogger] provides additional configuration functionality by setting the number of frames to skip
back in order to reach the desired caller.

# Sentry

When the SENTRY_DSN environment variable is set, [NewLogger] decorates the
[LifelineLogger] with a [SentryLogger], which additionally ships warning and
worse logs to Sentry.
*/
package logger
