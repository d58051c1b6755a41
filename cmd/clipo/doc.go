// Command clipo is the command-line client for the clipo clip service. It
// manages the local login session, submits source videos for clipping,
// watches processing tasks, and downloads the finished clips.
package main
